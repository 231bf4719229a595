package client

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"github.com/enercheck/compliance-server/events"
	"github.com/wvanbergen/kafka/consumergroup"
)

// EnerCheckResponder consumes the engine's event stream so external systems
// can react to rule, checklist, and check changes as they happen.
type EnerCheckResponder struct {
	DebugMode bool
	Consumer  *consumergroup.ConsumerGroup
	Conf      Config
	Fetch     func(*EnerCheckResponder, *events.GEM) error
	Timeout   time.Duration
}

// NewEnerCheckResponder joins a consumer group on the engine's event topic.
// Fetch is invoked for every event received.
func NewEnerCheckResponder(
	cfg Config,
	groupName string,
	zkLocation string,
	fetch func(*EnerCheckResponder, *events.GEM) error,
) (*EnerCheckResponder, error) {
	cgconf := consumergroup.NewConfig()
	consumerGroup, err := consumergroup.JoinConsumerGroup(
		groupName,
		[]string{"enercheck-event"},
		strings.Split(zkLocation, ","),
		cgconf,
	)
	if err != nil {
		return nil, err
	}
	c := &EnerCheckResponder{
		Conf:     cfg,
		Fetch:    fetch,
		Consumer: consumerGroup,
	}
	return c, nil
}

func (c *EnerCheckResponder) Note(msg string, args ...interface{}) {
	if c.DebugMode {
		log.Printf(msg, args...)
	}
}

// ParseGemEvent decodes a raw kafka message into the event envelope.
func ParseGemEvent(msg *sarama.ConsumerMessage) (*events.GEM, error) {
	var gem events.GEM
	err := json.Unmarshal(msg.Value, &gem)
	if err != nil {
		return nil, err
	}
	return &gem, nil
}

// Handle a kafka message
func (c *EnerCheckResponder) Handle(msg *sarama.ConsumerMessage) error {
	gem, err := ParseGemEvent(msg)
	if err != nil {
		return err
	}
	if gem == nil {
		return nil
	}
	return c.Fetch(c, gem)
}

// ConsumeKafka pulls events until the Timeout elapses with the stream idle.
func (c *EnerCheckResponder) ConsumeKafka() error {
	timeout := time.After(c.Timeout)
	msgs := c.Consumer.Messages()
	for {
		select {
		case msg := <-msgs:
			c.Consumer.CommitUpto(msg)
			if err := c.Handle(msg); err != nil {
				c.Note("event handler error: %v", err)
			}
			timeout = time.After(c.Timeout)
		case <-timeout:
			return nil
		}
	}
}
