package discovery

import (
	"context"
	"fmt"
	"time"
)

// Source names the mechanism that found a responder
type Source string

const (
	SourceSSDP Source = "ssdp"
	SourceMDNS Source = "mdns"
)

// Responder is a player that answered a discovery search
type Responder struct {
	// IP is the address the player answered from
	IP string `json:"ip"`

	// Port is the player's UPnP HTTP port (typically 1400)
	Port int `json:"port"`

	// Hostname is the mDNS hostname, empty for SSDP
	Hostname string `json:"hostname,omitempty"`

	// Instance is the mDNS instance name (e.g. "RINCON_000E58A0000101400@Kitchen")
	Instance string `json:"instance,omitempty"`

	// Source is how the responder was found
	Source Source `json:"source"`

	// Metadata contains mDNS TXT record data
	Metadata map[string]string `json:"metadata,omitempty"`

	// DiscoveredAt is when the responder was first seen
	DiscoveredAt time.Time `json:"discovered_at"`
}

// String returns a human-readable representation of the responder
func (r *Responder) String() string {
	if r.Hostname != "" {
		return fmt.Sprintf("%s (%s) at %s:%d via %s", r.Instance, r.Hostname, r.IP, r.Port, r.Source)
	}
	return fmt.Sprintf("player at %s:%d via %s", r.IP, r.Port, r.Source)
}

// BaseURL returns the HTTP base URL for the responder
func (r *Responder) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", r.IP, r.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (r *Responder) GetMetadata(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// Locator finds one player address within a timeout. Cancelling ctx ends
// the search early.
type Locator func(ctx context.Context, timeout time.Duration) (string, error)

// Responders lists every player answering within timeout using the named
// discovery mode. On a fatal error the responders seen so far are returned
// with it.
func Responders(ctx context.Context, mode string, timeout time.Duration) ([]*Responder, error) {
	switch Source(mode) {
	case SourceSSDP, "":
		return NewSearcher().Responders(ctx, timeout)
	case SourceMDNS:
		scanner := NewScanner()
		if timeout > 0 {
			scanner.Timeout = timeout
		}
		return scanner.ScanForResponders(ctx)
	default:
		return nil, fmt.Errorf("unknown discovery mode %q (expected ssdp or mdns)", mode)
	}
}

// LocatorFor returns the locator for a discovery mode name ("ssdp" or "mdns")
func LocatorFor(mode string) (Locator, error) {
	switch Source(mode) {
	case SourceSSDP, "":
		return SSDPLocator, nil
	case SourceMDNS:
		return MDNSLocator, nil
	default:
		return nil, fmt.Errorf("unknown discovery mode %q (expected ssdp or mdns)", mode)
	}
}

// Static returns a locator that always yields ip. It backs --device.
func Static(ip string) Locator {
	return func(context.Context, time.Duration) (string, error) {
		return ip, nil
	}
}
