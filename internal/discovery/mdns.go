package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/upnp"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type players advertise
	ServiceType = "_sonos._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for an mDNS browse
	DefaultScanTimeout = 3 * time.Second

	// DefaultPort is the player's UPnP HTTP port
	DefaultPort = 1400
)

// Scanner handles mDNS player discovery
type Scanner struct {
	// Timeout is the maximum time to wait for advertisements
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForResponders browses for players until the timeout elapses or ctx is
// cancelled. Responders are returned in the order first seen, one per IP.
func (s *Scanner) ScanForResponders(ctx context.Context) ([]*Responder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan []*Responder)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, upnp.NewTransportError("failed to create mDNS resolver", err)
	}

	go func() {
		done <- collectEntries(entries)
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, upnp.NewTransportError("failed to browse for mDNS services", err)
	}

	<-ctx.Done()
	responders := <-done

	logging.Debug("mDNS browse complete", zap.Int("responders", len(responders)))
	return responders, nil
}

// First returns the first player to advertise within the timeout, or ctx's
// error if ctx is cancelled first
func (s *Scanner) First(ctx context.Context) (*Responder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Responder, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, upnp.NewTransportError("failed to create mDNS resolver", err)
	}

	go func() {
		for entry := range entries {
			if r := parseServiceEntry(entry); r != nil {
				found <- r
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, upnp.NewTransportError("failed to browse for mDNS services", err)
	}

	select {
	case r := <-found:
		return r, nil
	case <-ctx.Done():
		select {
		case r := <-found:
			return r, nil
		default:
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, upnp.NewNoDeviceFoundError(fmt.Sprintf("no %s service advertised within %s", ServiceType, s.Timeout))
	}
}

// MDNSLocator finds the first player advertising over mDNS
func MDNSLocator(ctx context.Context, timeout time.Duration) (string, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	r, err := scanner.First(ctx)
	if err != nil {
		return "", err
	}
	return r.IP, nil
}

// collectEntries drains entries into responders in first-seen order, one
// per IP
func collectEntries(entries <-chan *zeroconf.ServiceEntry) []*Responder {
	var responders []*Responder
	seen := make(map[string]bool)
	for entry := range entries {
		r := parseServiceEntry(entry)
		if r == nil || seen[r.IP] {
			continue
		}
		seen[r.IP] = true
		responders = append(responders, r)
	}
	return responders
}

// parseServiceEntry converts a zeroconf service entry to a Responder.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Responder {
	if entry == nil {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Responder{
		IP:           ip,
		Port:         port,
		Hostname:     entry.HostName,
		Instance:     entry.Instance,
		Source:       SourceMDNS,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
