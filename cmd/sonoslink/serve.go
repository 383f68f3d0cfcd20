package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/metrics"
	"github.com/muurk/sonoslink/internal/publish"
	"github.com/muurk/sonoslink/internal/server"
	"github.com/muurk/sonoslink/internal/ui"
)

// Exporter and publisher flags
var (
	listenAddr   string
	brokerURL    string
	topicPrefix  string
	clientID     string
	mqttUsername string
	mqttPassword string
	publishEvery time.Duration
)

var errMissingBroker = errors.New("no MQTT broker configured (use --broker or set preferences.mqtt.broker)")

func init() {
	exporterCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to serve metrics on (default from config, :9464)")

	publishCmd.Flags().StringVar(&brokerURL, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (default from config)")
	publishCmd.Flags().StringVar(&topicPrefix, "topic-prefix", "", "Topic prefix (default from config, sonoslink)")
	publishCmd.Flags().StringVar(&clientID, "client-id", "", "MQTT client ID (default from config, sonoslink)")
	publishCmd.Flags().StringVar(&mqttUsername, "username", "", "MQTT username")
	publishCmd.Flags().StringVar(&mqttPassword, "password", "", "MQTT password")
	publishCmd.Flags().DurationVar(&publishEvery, "interval", 0, "Republish at this interval until interrupted (0 publishes once)")

	rootCmd.AddCommand(exporterCmd)
	rootCmd.AddCommand(publishCmd)
}

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Serve zone group metrics for Prometheus",
	Long: `Run an HTTP server exposing Prometheus metrics and the zone groups.

Every scrape of /metrics and every request to /groups runs a fresh
discovery. SOAP request counts and latencies are exported alongside the
group gauges. Stop with Ctrl+C.`,
	Example: `  sonoslink exporter
  sonoslink exporter --listen 127.0.0.1:9464 --device 192.168.1.69`,
	RunE: runExporter,
}

func runExporter(cmd *cobra.Command, args []string) error {
	registry := loadRegistry()
	d, err := newDiscoverer(registry)
	if err != nil {
		return err
	}

	observer := metrics.NewSOAPObserver()
	d.Client.Observe = observer.Observe

	timeout := discoverTimeout(registry)
	listen := listenAddr
	if listen == "" {
		listen = registry.Preferences.Metrics.Listen
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintHeader("EXPORTER", "sonoslink exporter", map[string]string{
		"Listen":  listen,
		"Timeout": timeout.String(),
	})

	srv := server.New(&server.Config{
		Listen:   listen,
		Discover: d.Discover,
		Timeout:  timeout,
		Registry: metrics.NewRegistry(metrics.NewCollector(d.Discover, timeout), observer),
	})
	return srv.Start()
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the zone groups to an MQTT broker",
	Long: `Discover the zone groups and publish one retained JSON message per
group to {prefix}/groups/{coordinator uuid}.

With --interval the groups are rediscovered and republished until
interrupted.`,
	Example: `  sonoslink publish --broker tcp://localhost:1883
  sonoslink publish --broker tcp://mqtt.lan:1883 --topic-prefix home/sonos --interval 1m`,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	registry := loadRegistry()
	prefs := registry.Preferences.MQTT

	opts := publish.Options{
		Broker:      firstNonEmpty(brokerURL, prefs.Broker),
		ClientID:    firstNonEmpty(clientID, prefs.ClientID),
		TopicPrefix: firstNonEmpty(topicPrefix, prefs.TopicPrefix),
		Username:    mqttUsername,
		Password:    mqttPassword,
	}
	if opts.Broker == "" {
		return errMissingBroker
	}

	d, err := newDiscoverer(registry)
	if err != nil {
		return err
	}
	timeout := discoverTimeout(registry)

	publisher, err := publish.Connect(opts)
	if err != nil {
		return err
	}
	defer publisher.Close()

	p := ui.NewPrinter(cmd.OutOrStdout())
	publishOnce := func() error {
		groups, err := d.Discover(timeout)
		if err != nil {
			return err
		}
		if err := publisher.PublishGroups(groups); err != nil {
			return err
		}
		p.PrintSuccess("Published zone groups", map[string]string{
			"Broker": opts.Broker,
			"Groups": strconv.Itoa(len(groups)),
			"Topic":  opts.TopicPrefix + "/groups/#",
		})
		return nil
	}

	if publishEvery <= 0 {
		return publishOnce()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(publishEvery)
	defer ticker.Stop()
	for {
		if err := publishOnce(); err != nil {
			// A missed round is retried on the next tick
			logging.Warn("Publish round failed", zap.Error(err))
			p.PrintError("Publish failed", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
