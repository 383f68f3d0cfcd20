// Package publish sends zone group topology to an MQTT broker.
//
// Each group is published as a retained JSON message on
// {prefix}/groups/{coordinator uuid}, so a subscriber that connects later
// still sees the last known layout.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/sonos"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// PlayerPayload is one player in a published group
type PlayerPayload struct {
	UUID string `json:"uuid"`
	IP   string `json:"ip"`
	Name string `json:"name"`
}

// GroupPayload is the JSON body of one group message
type GroupPayload struct {
	Coordinator PlayerPayload   `json:"coordinator"`
	Members     []PlayerPayload `json:"members"`
}

// Payload converts a group representative to its message body
func Payload(group *sonos.Device) GroupPayload {
	p := GroupPayload{
		Coordinator: player(group),
		Members:     []PlayerPayload{},
	}
	for _, m := range group.Members() {
		p.Members = append(p.Members, player(m))
	}
	return p
}

// Payloads converts every group
func Payloads(groups []*sonos.Device) []GroupPayload {
	out := make([]GroupPayload, 0, len(groups))
	for _, g := range groups {
		out = append(out, Payload(g))
	}
	return out
}

func player(d *sonos.Device) PlayerPayload {
	return PlayerPayload{UUID: d.UUID(), IP: d.IP(), Name: d.Name()}
}

// Topic returns the topic a group is published on
func Topic(prefix string, group *sonos.Device) string {
	return fmt.Sprintf("%s/groups/%s", prefix, group.UUID())
}

// Client is the part of mqtt.Client the publisher uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Options configures a broker connection
type Options struct {
	Broker      string // e.g. tcp://localhost:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Publisher publishes group messages
type Publisher struct {
	client Client
	prefix string
}

// NewPublisher wraps an already connected client
func NewPublisher(client Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Connect opens a broker connection and returns a publisher on it
func Connect(opts Options) (*Publisher, error) {
	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	co.SetUsername(opts.Username)
	co.SetPassword(opts.Password)
	co.SetConnectTimeout(publishTimeout)
	co.SetAutoReconnect(true)

	client := mqtt.NewClient(co)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Broker, token.Error())
	}
	logging.Info("Connected to MQTT broker", zap.String("broker", opts.Broker))
	return NewPublisher(client, opts.TopicPrefix), nil
}

// PublishGroups publishes one retained message per group
func (p *Publisher) PublishGroups(groups []*sonos.Device) error {
	for _, g := range groups {
		body, err := json.Marshal(Payload(g))
		if err != nil {
			return fmt.Errorf("encode group %s: %w", g.UUID(), err)
		}

		topic := Topic(p.prefix, g)
		token := p.client.Publish(topic, 1, true, body)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish %s: timed out after %s", topic, publishTimeout)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		logging.Debug("Published group", zap.String("topic", topic), zap.Int("bytes", len(body)))
	}
	return nil
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
