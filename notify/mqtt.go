package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultMQTTTopic = "farmeasy/notifications"

type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	Attempts uint64
}

// Envelope is the JSON payload published for each notification.
type Envelope struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
}

// Publisher is the subset of the paho client used for publishing.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// MQTTNotifier hands notifications to a broker topic. A downstream gateway
// owns the actual delivery.
type MQTTNotifier struct {
	pub   Publisher
	topic string
	log   zerolog.Logger
	now   func() time.Time
}

// ConnectMQTT dials the broker, retrying with exponential backoff.
func ConnectMQTT(ctx context.Context, cfg MQTTConfig, log zerolog.Logger) (mqtt.Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker not set")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "farmeasy-" + uuid.NewString()[:8]
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 5
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	client := mqtt.NewClient(opts)

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Attempts), ctx)
	err := backoff.Retry(func() error {
		token := client.Connect()
		if token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("broker", cfg.Broker).Msg("mqtt connect failed, retrying")
			return token.Error()
		}
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.Broker, err)
	}
	log.Info().Str("broker", cfg.Broker).Str("client_id", cfg.ClientID).Msg("mqtt connected")
	return client, nil
}

func NewMQTTNotifier(pub Publisher, topic string, log zerolog.Logger) *MQTTNotifier {
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTTNotifier{
		pub:   pub,
		topic: topic,
		log:   log.With().Str("component", "notify").Str("channel", ChannelMQTT).Logger(),
		now:   time.Now,
	}
}

func (n *MQTTNotifier) Send(ctx context.Context, recipient, message string) (bool, string) {
	env := Envelope{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Message:   message,
		SentAt:    n.now().UTC(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return false, "notification encoding failed: " + err.Error()
	}
	token := n.pub.Publish(n.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return false, "notification publish cancelled: " + ctx.Err().Error()
	}
	if err := token.Error(); err != nil {
		n.log.Warn().Err(err).Str("topic", n.topic).Msg("mqtt publish failed")
		return false, "notification publish failed: " + err.Error()
	}
	n.log.Debug().Str("topic", n.topic).Str("id", env.ID).Msg("notification published")
	return true, env.ID
}
