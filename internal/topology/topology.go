package topology

import (
	"fmt"
	"io"
	"net/url"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/upnp"
	"github.com/muurk/sonoslink/internal/xmltok"
	"go.uber.org/zap"
)

// Tag and attribute names in the ZoneGroupState document
const (
	TagZoneGroup       = "ZoneGroup"
	TagZoneGroupMember = "ZoneGroupMember"
	AttrCoordinator    = "Coordinator"
	AttrUUID           = "UUID"
	AttrZoneName       = "ZoneName"
	AttrLocation       = "Location"
)

// Player is one ZoneGroupMember
type Player struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	IP   string `json:"ip"` // Host part of the member's Location URL
}

// GroupRecord is one ZoneGroup: its coordinator UUID and its players in
// document order. The coordinator is normally one of the players.
type GroupRecord struct {
	Coordinator string   `json:"coordinator"`
	Players     []Player `json:"players"`
}

// Player returns the player with the given UUID
func (g *GroupRecord) Player(uuid string) (Player, bool) {
	for _, p := range g.Players {
		if p.UUID == uuid {
			return p, true
		}
	}
	return Player{}, false
}

// put adds p, replacing an earlier player with the same UUID in place
func (g *GroupRecord) put(p Player) {
	for i := range g.Players {
		if g.Players[i].UUID == p.UUID {
			g.Players[i] = p
			return
		}
	}
	g.Players = append(g.Players, p)
}

type state int

const (
	seekGroup state = iota
	seekCoordinator
	inGroupBody
	seekMemberAttrs
)

func (s state) String() string {
	switch s {
	case seekGroup:
		return "seekGroup"
	case seekCoordinator:
		return "seekCoordinator"
	case inGroupBody:
		return "inGroupBody"
	case seekMemberAttrs:
		return "seekMemberAttrs"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// memberField selects which Player field an attribute fills
type memberField int

const (
	fieldNone memberField = iota
	fieldUUID
	fieldName
	fieldLocation
)

func memberFieldFor(attr string) memberField {
	switch attr {
	case AttrUUID:
		return fieldUUID
	case AttrZoneName:
		return fieldName
	case AttrLocation:
		return fieldLocation
	default:
		return fieldNone
	}
}

// member accumulates the attributes of one ZoneGroupMember
type member struct {
	uuid, name, location string
	seen                 [4]bool
}

func (m *member) set(f memberField, value string) {
	switch f {
	case fieldUUID:
		m.uuid = value
	case fieldName:
		m.name = value
	case fieldLocation:
		m.location = value
	default:
		return
	}
	m.seen[f] = true
}

func (m *member) complete() bool {
	return m.seen[fieldUUID] && m.seen[fieldName] && m.seen[fieldLocation]
}

// Extract decodes a raw ZoneGroupState argument value and returns one record
// per ZoneGroup in document order. A document with no groups yields an empty
// slice and no error.
func Extract(value string) ([]GroupRecord, error) {
	records, err := Scan(xmltok.NewStringTokenizer(upnp.Unescape(value)))
	if err != nil {
		return nil, err
	}
	logging.Debug("Zone topology extracted", zap.Int("groups", len(records)))
	return records, nil
}

// Scan runs the topology state machine over an already unescaped token stream
func Scan(tokens upnp.TokenSource) ([]GroupRecord, error) {
	records := []GroupRecord{}
	st := seekGroup
	var group GroupRecord
	var m member

	for {
		tok, err := tokens.Next()
		if err == io.EOF && st == seekGroup {
			return records, nil
		}
		if err != nil {
			return nil, truncated(st, err)
		}

		switch st {
		case seekGroup:
			if tok.Is(xmltok.StartTag, TagZoneGroup) {
				group = GroupRecord{}
				st = seekCoordinator
			}

		case seekCoordinator:
			switch {
			case tok.Is(xmltok.Attr, AttrCoordinator):
				group.Coordinator = tok.Value
				st = inGroupBody
			case tok.Is(xmltok.EndTag, TagZoneGroup):
				return nil, upnp.NewMalformedTopologyError("ZoneGroup without a Coordinator attribute", nil)
			}

		case inGroupBody:
			switch {
			case tok.Is(xmltok.StartTag, TagZoneGroupMember):
				m = member{}
				st = seekMemberAttrs
			case tok.Is(xmltok.EndTag, TagZoneGroup):
				records = append(records, group)
				st = seekGroup
			}

		case seekMemberAttrs:
			if tok.Kind != xmltok.Attr {
				return nil, upnp.NewMalformedTopologyError(
					fmt.Sprintf("ZoneGroupMember in group %s is missing %s", group.Coordinator, m.missing()), nil)
			}
			m.set(memberFieldFor(tok.Name), tok.Value)
			if m.complete() {
				p, err := m.player()
				if err != nil {
					return nil, err
				}
				group.put(p)
				st = inGroupBody
			}
		}
	}
}

func (m *member) player() (Player, error) {
	u, err := url.Parse(m.location)
	if err != nil || u.Hostname() == "" {
		return Player{}, upnp.NewMalformedTopologyError(
			fmt.Sprintf("member %s has an unusable Location %q", m.uuid, m.location), err)
	}
	return Player{
		UUID: m.uuid,
		Name: upnp.Unescape(m.name),
		IP:   u.Hostname(),
	}, nil
}

func (m *member) missing() string {
	var names []string
	for _, f := range []struct {
		field memberField
		name  string
	}{{fieldUUID, AttrUUID}, {fieldName, AttrZoneName}, {fieldLocation, AttrLocation}} {
		if !m.seen[f.field] {
			names = append(names, f.name)
		}
	}
	return fmt.Sprint(names)
}

func truncated(st state, err error) error {
	if err == io.EOF {
		return upnp.NewMalformedTopologyError(fmt.Sprintf("document ended in %s", st), nil)
	}
	return upnp.NewMalformedTopologyError(fmt.Sprintf("unreadable document in %s", st), err)
}
