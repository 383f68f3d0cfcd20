package sonos

import (
	"fmt"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/upnp"
	"go.uber.org/zap"
)

const (
	avTransportService = "AVTransport"
	avTransportPath    = "/MediaRenderer/AVTransport/Control"
)

// transportArgs are sent with Play, Pause and Next
var transportArgs = []upnp.Arg{
	{Name: "InstanceID", Value: "0"},
	{Name: "Speed", Value: "1"},
}

// Play resumes playback on the group this device coordinates
func (d *Device) Play() error {
	_, err := d.avTransport("Play", transportArgs)
	return err
}

// Pause pauses playback
func (d *Device) Pause() error {
	_, err := d.avTransport("Pause", transportArgs)
	return err
}

// Next skips to the next track in the queue
func (d *Device) Next() error {
	_, err := d.avTransport("Next", transportArgs)
	return err
}

func (d *Device) avTransport(action string, args []upnp.Arg) (upnp.Arguments, error) {
	logging.Debug("AVTransport command",
		zap.String("action", action),
		zap.String("device", d.name),
	)
	resp, err := d.soapClient().Send(d.BaseURL()+avTransportPath, avTransportService, 1, action, args)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", action, d.name, err)
	}
	return resp, nil
}
