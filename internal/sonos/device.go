package sonos

import (
	"fmt"
	"strings"

	"github.com/muurk/sonoslink/internal/upnp"
)

// DefaultPort is the players' UPnP HTTP port
const DefaultPort = 1400

// Device is one player. When returned from Discover it is the coordinator of
// its group and Members holds the rest of the group.
//
// A Device does not change after construction.
type Device struct {
	uuid    string
	ip      string
	name    string
	port    int
	members []*Device
	client  *upnp.Client
}

// NewDevice creates a standalone player handle on the default port
func NewDevice(uuid, ip, name string) *Device {
	return newDevice(uuid, ip, name, DefaultPort, nil)
}

func newDevice(uuid, ip, name string, port int, client *upnp.Client) *Device {
	if port == 0 {
		port = DefaultPort
	}
	return &Device{uuid: uuid, ip: ip, name: name, port: port, client: client}
}

// UUID returns the player's RINCON identifier
func (d *Device) UUID() string { return d.uuid }

// IP returns the player's network address
func (d *Device) IP() string { return d.ip }

// Name returns the zone (room) name
func (d *Device) Name() string { return d.name }

// Members returns the other players in the group, in topology order.
// The returned slice is a copy.
func (d *Device) Members() []*Device {
	out := make([]*Device, len(d.members))
	copy(out, d.members)
	return out
}

// BaseURL returns the HTTP base URL for the player
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.ip, d.port)
}

// Equal reports whether two devices describe the same player at the same
// address under the same name. Members are not compared.
func (d *Device) Equal(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.uuid == other.uuid && d.ip == other.ip && d.name == other.name
}

// String returns a human-readable representation of the device
func (d *Device) String() string {
	if len(d.members) == 0 {
		return fmt.Sprintf("%s (%s) at %s", d.name, d.uuid, d.ip)
	}
	names := make([]string, len(d.members))
	for i, m := range d.members {
		names[i] = m.name
	}
	return fmt.Sprintf("%s (%s) at %s + [%s]", d.name, d.uuid, d.ip, strings.Join(names, ", "))
}

// Rooms returns the coordinator's name followed by the member names
func (d *Device) Rooms() []string {
	rooms := []string{d.name}
	for _, m := range d.members {
		rooms = append(rooms, m.name)
	}
	return rooms
}

// FindByName returns the group representative whose group contains a player
// with the given zone name, compared case-insensitively, or nil.
func FindByName(groups []*Device, name string) *Device {
	for _, g := range groups {
		if strings.EqualFold(g.name, name) {
			return g
		}
		for _, m := range g.members {
			if strings.EqualFold(m.name, name) {
				return g
			}
		}
	}
	return nil
}

func (d *Device) soapClient() *upnp.Client {
	if d.client == nil {
		return upnp.DefaultClient
	}
	return d.client
}
