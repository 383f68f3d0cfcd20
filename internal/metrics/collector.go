// Package metrics exports zone group state and SOAP traffic to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/sonos"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DiscoverFunc returns the household's groups. Collector calls it once per
// scrape.
type DiscoverFunc func(timeout time.Duration) ([]*sonos.Device, error)

// Collector runs a fresh discovery on every scrape and reports the result.
type Collector struct {
	discover DiscoverFunc
	timeout  time.Duration
	mu       sync.Mutex

	discoverySuccess prometheus.Gauge
	lastSuccess      prometheus.Gauge
	groups           prometheus.Gauge
	groupMembers     *prometheus.GaugeVec
}

// NewCollector creates a collector that discovers with discover and timeout
func NewCollector(discover DiscoverFunc, timeout time.Duration) *Collector {
	return &Collector{
		discover: discover,
		timeout:  timeout,
		discoverySuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sonoslink_discovery_success",
			Help: "Last discovery success (1=ok, 0=error)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sonoslink_last_success_timestamp_seconds",
			Help: "Last successful discovery timestamp (epoch seconds)",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sonoslink_groups",
			Help: "Number of zone groups reported by the topology",
		}),
		groupMembers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sonoslink_group_members",
			Help: "Players in each zone group, coordinator included",
		}, []string{"coordinator", "zone"}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.discoverySuccess.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.groups.Describe(ch)
	c.groupMembers.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups, err := c.discover(c.timeout)
	if err != nil {
		logging.Warn("Discovery failed during scrape", zap.Error(err))
		c.discoverySuccess.Set(0)
		c.collectAll(ch)
		return
	}

	c.discoverySuccess.Set(1)
	c.lastSuccess.Set(float64(time.Now().Unix()))
	c.groups.Set(float64(len(groups)))

	c.groupMembers.Reset()
	for _, g := range groups {
		c.groupMembers.WithLabelValues(g.UUID(), g.Name()).Set(float64(1 + len(g.Members())))
	}

	c.collectAll(ch)
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.discoverySuccess.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.groups.Collect(ch)
	c.groupMembers.Collect(ch)
}

// SOAPObserver counts and times SOAP requests. Its Observe method plugs into
// upnp.Client.Observe.
type SOAPObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSOAPObserver creates the SOAP request metrics
func NewSOAPObserver() *SOAPObserver {
	return &SOAPObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sonoslink_soap_requests_total",
			Help: "SOAP requests by action and HTTP status (0 = network failure)",
		}, []string{"action", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sonoslink_soap_request_duration_seconds",
			Help:    "SOAP round-trip time by action",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"action"}),
	}
}

// Observe records one request
func (o *SOAPObserver) Observe(action string, status int, elapsed time.Duration) {
	o.requests.WithLabelValues(action, strconv.Itoa(status)).Inc()
	o.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (o *SOAPObserver) Describe(ch chan<- *prometheus.Desc) {
	o.requests.Describe(ch)
	o.duration.Describe(ch)
}

func (o *SOAPObserver) Collect(ch chan<- prometheus.Metric) {
	o.requests.Collect(ch)
	o.duration.Collect(ch)
}

// NewRegistry registers the given collectors on a fresh registry
func NewRegistry(collectors ...prometheus.Collector) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	for _, c := range collectors {
		registry.MustRegister(c)
	}
	return registry
}

// Handler serves registry in the Prometheus exposition format
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
