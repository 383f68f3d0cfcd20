package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestResponder_String(t *testing.T) {
	tests := []struct {
		name     string
		r        *Responder
		expected string
	}{
		{
			name:     "ssdp",
			r:        &Responder{IP: "192.168.1.69", Port: 1400, Source: SourceSSDP},
			expected: "player at 192.168.1.69:1400 via ssdp",
		},
		{
			name: "mdns",
			r: &Responder{
				IP:       "192.168.1.69",
				Port:     1400,
				Hostname: "Sonos-000E58A00001.local.",
				Instance: "RINCON_000E58A0000101400@Kitchen",
				Source:   SourceMDNS,
			},
			expected: "RINCON_000E58A0000101400@Kitchen (Sonos-000E58A00001.local.) at 192.168.1.69:1400 via mdns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestResponder_BaseURL(t *testing.T) {
	r := &Responder{IP: "10.0.0.5", Port: 1400}
	if got := r.BaseURL(); got != "http://10.0.0.5:1400" {
		t.Errorf("BaseURL() = %v", got)
	}
}

func TestResponder_GetMetadata(t *testing.T) {
	r := &Responder{Metadata: map[string]string{"info": "/api/v1/players/RINCON_A/info"}}
	if got := r.GetMetadata("info"); got != "/api/v1/players/RINCON_A/info" {
		t.Errorf("GetMetadata(info) = %q", got)
	}
	if got := r.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}
	if got := (&Responder{}).GetMetadata("info"); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}

func TestLocatorFor(t *testing.T) {
	for _, mode := range []string{"", "ssdp", "mdns"} {
		if l, err := LocatorFor(mode); err != nil || l == nil {
			t.Errorf("LocatorFor(%q) = %v, %v", mode, l, err)
		}
	}
	if _, err := LocatorFor("bluetooth"); err == nil {
		t.Error("LocatorFor(bluetooth) should fail")
	}
}

func TestStatic(t *testing.T) {
	ip, err := Static("10.1.2.3")(context.Background(), time.Second)
	if err != nil || ip != "10.1.2.3" {
		t.Errorf("Static() = %q, %v", ip, err)
	}
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "ipv4 player",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "RINCON_A@Kitchen"},
				HostName:      "Sonos-A.local.",
				Port:          1443,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.69")},
				Text:          []string{"info=/api/v1/players/RINCON_A/info", "vers=3", "flag"},
			},
			wantIP:   "192.168.1.69",
			wantPort: 1443,
		},
		{
			name: "missing port falls back to 1400",
			entry: &zeroconf.ServiceEntry{
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
		},
		{
			name: "ipv6 only",
			entry: &zeroconf.ServiceEntry{
				Port:     1400,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 1400,
		},
		{
			name:    "no addresses",
			entry:   &zeroconf.ServiceEntry{Port: 1400},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if r != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", r)
				}
				return
			}
			if r == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if r.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", r.IP, tt.wantIP)
			}
			if r.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", r.Port, tt.wantPort)
			}
			if r.Source != SourceMDNS {
				t.Errorf("Source = %v, want mdns", r.Source)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	r := parseServiceEntry(&zeroconf.ServiceEntry{
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.69")},
		Text:     []string{"vers=3", "flag", "info=a=b"},
	})
	if r.GetMetadata("vers") != "3" {
		t.Errorf("vers = %q", r.GetMetadata("vers"))
	}
	if _, ok := r.Metadata["flag"]; !ok {
		t.Error("bare TXT key should be present")
	}
	if r.GetMetadata("info") != "a=b" {
		t.Errorf("info = %q, want split on the first '='", r.GetMetadata("info"))
	}
}

func TestNewScanner(t *testing.T) {
	if s := NewScanner(); s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}

func TestResponders_UnknownMode(t *testing.T) {
	if _, err := Responders(context.Background(), "bluetooth", time.Second); err == nil {
		t.Error("Responders(bluetooth) should fail")
	}
}

func TestCollectEntries(t *testing.T) {
	entry := func(instance, ip string, txt ...string) *zeroconf.ServiceEntry {
		e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
		e.HostName = "Sonos-" + instance + ".local."
		e.Port = 1443
		e.AddrIPv4 = []net.IP{net.ParseIP(ip)}
		e.Text = txt
		return e
	}

	entries := make(chan *zeroconf.ServiceEntry, 5)
	entries <- entry("RINCON_A@Kitchen", "192.168.1.69", "vers=3")
	entries <- zeroconf.NewServiceEntry("no-address", ServiceType, ServiceDomain)
	entries <- entry("RINCON_B@Patio", "192.168.1.70")
	entries <- entry("RINCON_A@Kitchen", "192.168.1.69", "vers=3")
	entries <- nil
	close(entries)

	responders := collectEntries(entries)
	if len(responders) != 2 {
		t.Fatalf("got %d responders, want 2 (one per IP, unaddressed dropped): %v", len(responders), responders)
	}
	if responders[0].Instance != "RINCON_A@Kitchen" || responders[1].IP != "192.168.1.70" {
		t.Errorf("responders out of first-seen order: %v", responders)
	}
	if got := responders[0].GetMetadata("vers"); got != "3" {
		t.Errorf("vers = %q, want 3", got)
	}
	if responders[0].Source != SourceMDNS || responders[0].Port != 1443 {
		t.Errorf("responder = %+v", responders[0])
	}
}
