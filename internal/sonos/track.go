package sonos

import (
	"errors"
	"fmt"
	"io"

	"github.com/muurk/sonoslink/internal/upnp"
	"github.com/muurk/sonoslink/internal/xmltok"
)

// positionArgs are sent with GetPositionInfo
var positionArgs = []upnp.Arg{
	{Name: "InstanceID", Value: "0"},
	{Name: "Channel", Value: "Master"},
}

// TrackInfo describes the track a group is playing
type TrackInfo struct {
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Title    string `json:"title"`
	Duration string `json:"duration"` // TrackDuration, "H:MM:SS"
	Position string `json:"position"` // RelTime, "H:MM:SS"
}

// String returns a one-line summary of the track
func (t *TrackInfo) String() string {
	return fmt.Sprintf("%s - %s (%s) %s/%s", t.Artist, t.Title, t.Album, t.Position, t.Duration)
}

// CurrentTrack returns the track playing on this device's group, or nil when
// the player reports no track metadata.
func (d *Device) CurrentTrack() (*TrackInfo, error) {
	resp, err := d.avTransport("GetPositionInfo", positionArgs)
	if err != nil {
		return nil, err
	}

	metadata, ok := resp["TrackMetaData"]
	if !ok {
		return nil, nil
	}

	info := &TrackInfo{
		Duration: resp["TrackDuration"],
		Position: resp["RelTime"],
	}
	if err := info.parseMetadata(upnp.Unescape(metadata)); err != nil {
		return nil, err
	}
	return info, nil
}

// parseMetadata fills the artist, album and title from a DIDL-Lite document.
// Tags are matched by local name anywhere in the document and take the text
// that immediately follows the start tag.
func (t *TrackInfo) parseMetadata(didl string) error {
	fields := map[string]*string{
		"creator": &t.Artist,
		"album":   &t.Album,
		"title":   &t.Title,
	}

	tokens := xmltok.NewStringTokenizer(didl)
	var pending *string
	for {
		tok, err := tokens.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return upnp.NewMalformedResponseError("unreadable track metadata", err)
		}

		switch tok.Kind {
		case xmltok.StartTag:
			pending = fields[tok.Name]
		case xmltok.Text:
			if pending != nil {
				*pending = upnp.Unescape(tok.Value)
				pending = nil
			}
		case xmltok.EndTag:
			pending = nil
		}
	}
}
