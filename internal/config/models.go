package config

import "time"

const (
	// CurrentVersion is the registry file format version
	CurrentVersion = 1

	defaultDiscoverTimeout = 2
	defaultDiscoveryMode   = "ssdp"
	defaultTopicPrefix     = "sonoslink"
	defaultClientID        = "sonoslink"
	defaultMetricsListen   = ":9464"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Players     map[string]*Player `yaml:"players,omitempty"` // Keyed by player UUID
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Player is what the registry remembers about one player. It is only used
// for display; discovery never trusts a stored address.
type Player struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-chosen label
	LastIP   string    `yaml:"last_ip,omitempty"`   // Address at last discovery
	LastName string    `yaml:"last_name,omitempty"` // Zone name at last discovery
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout int          `yaml:"discover_timeout"` // Seconds
	DiscoveryMode   string       `yaml:"discovery_mode"`   // ssdp or mdns
	MQTT            *MQTTPrefs   `yaml:"mqtt,omitempty"`
	Metrics         *MetricsPref `yaml:"metrics,omitempty"`
}

// MQTTPrefs configures the topology publisher
type MQTTPrefs struct {
	Broker      string `yaml:"broker,omitempty"` // e.g. tcp://localhost:1883
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
}

// MetricsPref configures the exporter
type MetricsPref struct {
	Listen string `yaml:"listen"`
}

// DefaultPreferences returns the preferences used when the file has none
func DefaultPreferences() *Preferences {
	return &Preferences{
		DiscoverTimeout: defaultDiscoverTimeout,
		DiscoveryMode:   defaultDiscoveryMode,
		MQTT: &MQTTPrefs{
			TopicPrefix: defaultTopicPrefix,
			ClientID:    defaultClientID,
		},
		Metrics: &MetricsPref{
			Listen: defaultMetricsListen,
		},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Players:     make(map[string]*Player),
		Preferences: DefaultPreferences(),
	}
}

// fillDefaults initializes anything a hand-edited file may have left out
func (r *Registry) fillDefaults() {
	if r.Players == nil {
		r.Players = make(map[string]*Player)
	}
	if r.Preferences == nil {
		r.Preferences = DefaultPreferences()
		return
	}
	def := DefaultPreferences()
	p := r.Preferences
	if p.DiscoverTimeout <= 0 {
		p.DiscoverTimeout = def.DiscoverTimeout
	}
	if p.DiscoveryMode == "" {
		p.DiscoveryMode = def.DiscoveryMode
	}
	if p.MQTT == nil {
		p.MQTT = def.MQTT
	}
	if p.MQTT.TopicPrefix == "" {
		p.MQTT.TopicPrefix = def.MQTT.TopicPrefix
	}
	if p.MQTT.ClientID == "" {
		p.MQTT.ClientID = def.MQTT.ClientID
	}
	if p.Metrics == nil {
		p.Metrics = def.Metrics
	}
	if p.Metrics.Listen == "" {
		p.Metrics.Listen = def.Metrics.Listen
	}
}

// DiscoverTimeout returns the configured discovery timeout
func (r *Registry) DiscoverTimeout() time.Duration {
	if r.Preferences == nil || r.Preferences.DiscoverTimeout <= 0 {
		return defaultDiscoverTimeout * time.Second
	}
	return time.Duration(r.Preferences.DiscoverTimeout) * time.Second
}

// GetPlayer retrieves player metadata by UUID.
// Returns nil if the player doesn't exist in the registry.
func (r *Registry) GetPlayer(uuid string) *Player {
	return r.Players[uuid]
}

// EnsurePlayer returns the entry for uuid, creating it if needed
func (r *Registry) EnsurePlayer(uuid string) *Player {
	if r.Players == nil {
		r.Players = make(map[string]*Player)
	}
	if p, exists := r.Players[uuid]; exists {
		return p
	}
	p := &Player{}
	r.Players[uuid] = p
	return p
}

// RecordSeen stores the address and zone name a player was discovered with
func (r *Registry) RecordSeen(uuid, ip, name string, at time.Time) {
	p := r.EnsurePlayer(uuid)
	p.LastIP = ip
	p.LastName = name
	p.LastSeen = at
}

// SetNickname sets a user-friendly nickname for a player.
func (r *Registry) SetNickname(uuid, nickname string) {
	r.EnsurePlayer(uuid).Nickname = nickname
}

// DisplayName returns the nickname for uuid if one is set, else name
func (r *Registry) DisplayName(uuid, name string) string {
	if p := r.Players[uuid]; p != nil && p.Nickname != "" {
		return p.Nickname
	}
	return name
}
