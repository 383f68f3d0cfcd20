package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/sonoslink/internal/config"
	"github.com/muurk/sonoslink/internal/discovery"
	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/publish"
	"github.com/muurk/sonoslink/internal/sonos"
	"github.com/muurk/sonoslink/internal/ui"
	"github.com/muurk/sonoslink/internal/upnp"
	"github.com/muurk/sonoslink/internal/version"
)

// Discovery flags shared by every command that needs the topology
var (
	deviceIP     string
	devicePort   int
	scanTimeout  int
	useMDNS      bool
	outputFormat string
)

const (
	formatDetailed = "detailed"
	formatCompact  = "compact"
	formatJSON     = "json"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceIP, "device", "", "Player IP address to query (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", sonos.DefaultPort, "Player UPnP HTTP port")
	rootCmd.PersistentFlags().IntVar(&scanTimeout, "timeout", 0, "Discovery timeout in seconds (default from config, 2)")
	rootCmd.PersistentFlags().BoolVar(&useMDNS, "mdns", false, "Locate players with mDNS instead of SSDP")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, compact, json)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(respondersCmd)
}

// scanCmd lists the zone groups
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the zone groups on the network",
	Long: `Discover a player and list every zone group in the household.

Each group is shown with its coordinator first, followed by the other
rooms playing with it. Discovered players are remembered in the config
file so nicknames can be attached to them with 'sonoslink name'.`,
	Example: `  # Scan with SSDP (default)
  sonoslink scan

  # One line per group
  sonoslink scan --format compact

  # Use mDNS and wait up to 5 seconds
  sonoslink scan --mdns --timeout 5

  # Ask a known player directly
  sonoslink scan --device 192.168.1.69 --format json`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	registry := loadRegistry()
	groups, err := discoverGroups(cmd.Context(), out, registry)
	if err != nil {
		return err
	}

	remember(registry, groups)

	switch outputFormat {
	case formatJSON:
		return writeJSON(out, publish.Payloads(groups))
	case formatCompact:
		ui.NewPrinter(out).PrintGroups(ui.ViewGroups(groups, registry.DisplayName), true)
	default:
		p := ui.NewPrinter(out)
		p.PrintHeader("ZONE GROUPS", "sonoslink scan", discoveryParams(registry))
		p.Newline()
		p.PrintGroups(ui.ViewGroups(groups, registry.DisplayName), false)
	}
	return nil
}

// topologyCmd dumps the raw group records
var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Print the raw zone group records as JSON",
	Long: `Query one player for its zone group state and print the decoded
records as JSON, before groups are assembled.

Useful for checking what a player actually reports when scan output
looks wrong.`,
	Example: `  sonoslink topology
  sonoslink topology --device 192.168.1.69`,
	RunE: runTopology,
}

func runTopology(cmd *cobra.Command, args []string) error {
	registry := loadRegistry()
	d, err := newDiscoverer(registry)
	if err != nil {
		return err
	}

	ip, err := d.Locate(cmd.Context(), discoverTimeout(registry))
	if err != nil {
		return err
	}
	records, err := d.Topology(ip)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), records)
}

// respondersCmd lists every player answering discovery
var respondersCmd = &cobra.Command{
	Use:   "responders",
	Short: "List every player answering discovery",
	Long: `Run a full discovery search and list every player that answered,
without querying any topology.

SSDP lists the answering addresses. mDNS also shows each player's
instance name, hostname and TXT record. Useful when scan finds fewer
players than expected.`,
	Example: `  sonoslink responders
  sonoslink responders --mdns --timeout 5
  sonoslink responders --format json`,
	RunE: runResponders,
}

// listResponders is replaced in tests
var listResponders = discovery.Responders

func runResponders(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	registry := loadRegistry()
	mode := discoveryMode(registry)
	timeout := discoverTimeout(registry)

	var responders []*discovery.Responder
	err := ui.RunWithSpinner(cmd.Context(), out, "Listening for players...", func(ctx context.Context) error {
		var lerr error
		responders, lerr = listResponders(ctx, mode, timeout)
		return lerr
	})
	if err != nil {
		if len(responders) == 0 {
			return err
		}
		logging.Warn("Discovery ended early", zap.Error(err))
	}

	switch outputFormat {
	case formatJSON:
		return writeJSON(out, responders)
	case formatCompact:
		ui.NewPrinter(out).PrintResponders(responders, true)
	default:
		p := ui.NewPrinter(out)
		p.PrintHeader("RESPONDERS", "sonoslink responders", map[string]string{
			"Discovery": mode,
			"Timeout":   timeout.String(),
		})
		p.Newline()
		p.PrintResponders(responders, false)
	}
	return nil
}

// nameCmd attaches a nickname to a player
var nameCmd = &cobra.Command{
	Use:   "name <uuid> [nickname]",
	Short: "Set or clear a player's nickname",
	Long: `Store a nickname for a player, shown in place of its zone name.

Run without a nickname to clear it. Player UUIDs are listed by
'sonoslink scan --format json'.`,
	Example: `  sonoslink name RINCON_000E58A0000101400 "Kitchen (ceiling)"
  sonoslink name RINCON_000E58A0000101400`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runName,
}

func runName(cmd *cobra.Command, args []string) error {
	registry, err := config.Load()
	if err != nil {
		return err
	}

	nickname := ""
	if len(args) == 2 {
		nickname = args[1]
	}
	registry.SetNickname(args[0], nickname)
	if err := registry.Save(); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	if nickname == "" {
		p.PrintSuccess("Nickname cleared", map[string]string{"Player": args[0]})
	} else {
		p.PrintSuccess("Nickname saved", map[string]string{"Player": args[0], "Nickname": nickname})
	}
	return nil
}

// loadRegistry loads the config file, falling back to defaults. A broken
// config file never stops discovery.
func loadRegistry() *config.Registry {
	registry, err := config.Load()
	if err != nil {
		logging.Warn("Ignoring config file", zap.Error(err))
		return config.NewRegistry()
	}
	return registry
}

// newDiscoverer builds a discoverer from flags and preferences
func newDiscoverer(registry *config.Registry) (*sonos.Discoverer, error) {
	client := upnp.NewClient()
	client.UserAgent = version.UserAgent()

	d := sonos.NewDiscoverer()
	d.Client = client
	d.Port = devicePort

	if deviceIP != "" {
		d.Locate = discovery.Static(deviceIP)
		return d, nil
	}

	locate, err := discovery.LocatorFor(discoveryMode(registry))
	if err != nil {
		return nil, err
	}
	d.Locate = locate
	return d, nil
}

func discoveryMode(registry *config.Registry) string {
	if useMDNS {
		return string(discovery.SourceMDNS)
	}
	return registry.Preferences.DiscoveryMode
}

func discoverTimeout(registry *config.Registry) time.Duration {
	if scanTimeout > 0 {
		return time.Duration(scanTimeout) * time.Second
	}
	return registry.DiscoverTimeout()
}

// discoverGroups runs discovery behind a spinner
func discoverGroups(ctx context.Context, out io.Writer, registry *config.Registry) ([]*sonos.Device, error) {
	d, err := newDiscoverer(registry)
	if err != nil {
		return nil, err
	}

	var groups []*sonos.Device
	err = ui.RunWithSpinner(ctx, out, "Discovering players...", func(ctx context.Context) error {
		var derr error
		groups, derr = d.DiscoverContext(ctx, discoverTimeout(registry))
		return derr
	})
	return groups, err
}

// remember records every discovered player in the config file
func remember(registry *config.Registry, groups []*sonos.Device) {
	now := time.Now()
	for _, g := range groups {
		registry.RecordSeen(g.UUID(), g.IP(), g.Name(), now)
		for _, m := range g.Members() {
			registry.RecordSeen(m.UUID(), m.IP(), m.Name(), now)
		}
	}
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}
}

func discoveryParams(registry *config.Registry) map[string]string {
	params := map[string]string{
		"Timeout": discoverTimeout(registry).String(),
	}
	if deviceIP != "" {
		params["Device"] = deviceIP
	} else {
		params["Discovery"] = discoveryMode(registry)
	}
	return params
}

func checkFormat(format string) error {
	switch format {
	case formatDetailed, formatCompact, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected %s, %s or %s)", format, formatDetailed, formatCompact, formatJSON)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
