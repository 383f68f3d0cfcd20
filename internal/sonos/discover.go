package sonos

import (
	"context"
	"fmt"
	"time"

	"github.com/muurk/sonoslink/internal/discovery"
	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/topology"
	"github.com/muurk/sonoslink/internal/upnp"
	"go.uber.org/zap"
)

const (
	topologyService    = "ZoneGroupTopology"
	topologyPath       = "/ZoneGroupTopology/Control"
	topologyAction     = "GetZoneGroupState"
	topologyStateField = "ZoneGroupState"
)

// Discoverer finds a player and assembles the household's groups from its
// topology.
type Discoverer struct {
	// Locate returns the address of one responding player
	Locate discovery.Locator

	// Client sends the topology query and is handed to every Device
	Client *upnp.Client

	// Port is the players' HTTP port (DefaultPort when zero)
	Port int
}

// NewDiscoverer creates a discoverer that locates players with SSDP
func NewDiscoverer() *Discoverer {
	return &Discoverer{
		Locate: discovery.SSDPLocator,
		Client: upnp.DefaultClient,
		Port:   DefaultPort,
	}
}

// Discover returns one Device per zone group, in topology order. The first
// responding player is enough: any player can describe the whole household.
func (d *Discoverer) Discover(timeout time.Duration) ([]*Device, error) {
	return d.DiscoverContext(context.Background(), timeout)
}

// DiscoverContext is Discover with a context that can end the search for a
// responder early. The topology query itself is not cancellable.
func (d *Discoverer) DiscoverContext(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	ip, err := d.Locate(ctx, timeout)
	if err != nil {
		return nil, err
	}
	logging.Debug("Querying topology", zap.String("ip", ip))

	records, err := d.Topology(ip)
	if err != nil {
		return nil, err
	}
	return d.Assemble(records)
}

// Topology queries the player at ip for its zone group records
func (d *Discoverer) Topology(ip string) ([]topology.GroupRecord, error) {
	url := fmt.Sprintf("http://%s:%d%s", ip, d.port(), topologyPath)
	args, err := d.client().Send(url, topologyService, 1, topologyAction, nil)
	if err != nil {
		return nil, err
	}

	value, ok := args[topologyStateField]
	if !ok {
		return nil, upnp.NewMalformedResponseError(
			fmt.Sprintf("%sResponse has no %s argument", topologyAction, topologyStateField), nil)
	}
	return topology.Extract(value)
}

// Assemble builds one representative Device per record. The representative
// is the player whose UUID is the record's coordinator; every other player is
// attached to it in record order.
func (d *Discoverer) Assemble(records []topology.GroupRecord) ([]*Device, error) {
	groups := make([]*Device, 0, len(records))
	for _, rec := range records {
		coord, ok := rec.Player(rec.Coordinator)
		if !ok {
			return nil, upnp.NewMalformedTopologyError(
				fmt.Sprintf("coordinator %s is not a member of its own group", rec.Coordinator), nil)
		}

		rep := newDevice(coord.UUID, coord.IP, coord.Name, d.port(), d.Client)
		for _, p := range rec.Players {
			if p.UUID == rec.Coordinator {
				continue
			}
			rep.members = append(rep.members, newDevice(p.UUID, p.IP, p.Name, d.port(), d.Client))
		}
		groups = append(groups, rep)
	}

	logging.Info("Discovery complete", zap.Int("groups", len(groups)))
	return groups, nil
}

func (d *Discoverer) port() int {
	if d.Port == 0 {
		return DefaultPort
	}
	return d.Port
}

func (d *Discoverer) client() *upnp.Client {
	if d.Client == nil {
		return upnp.DefaultClient
	}
	return d.Client
}

// Discover finds the household's groups with SSDP
func Discover(timeout time.Duration) ([]*Device, error) {
	return NewDiscoverer().Discover(timeout)
}
