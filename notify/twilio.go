package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const DefaultTwilioURL = "https://api.twilio.com"

type TwilioConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// Configured reports whether credentials and a sender number are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// TwilioNotifier sends SMS through the Twilio Messages REST resource.
type TwilioNotifier struct {
	cfg  TwilioConfig
	http *http.Client
	cb   *gobreaker.CircuitBreaker
	log  zerolog.Logger
}

func NewTwilioNotifier(cfg TwilioConfig, log zerolog.Logger) *TwilioNotifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTwilioURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TwilioNotifier{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb:   newBreaker("twilio", 5, 30*time.Second, time.Minute),
		log:  log.With().Str("component", "notify").Str("channel", ChannelSMS).Logger(),
	}
}

func newBreaker(name string, fails uint32, open, interval time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Timeout:  open,
		Interval: interval,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
	})
}

type twilioMessage struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func (n *TwilioNotifier) Send(ctx context.Context, recipient, message string) (bool, string) {
	if !n.cfg.Configured() {
		return false, NotConfigured
	}
	res, err := n.cb.Execute(func() (any, error) {
		return n.post(ctx, recipient, message)
	})
	if err != nil {
		n.log.Warn().Err(err).Str("recipient", recipient).Msg("sms send failed")
		return false, "SMS sending failed: " + err.Error()
	}
	sid := res.(string)
	n.log.Info().Str("recipient", recipient).Str("sid", sid).Msg("sms sent")
	return true, sid
}

func (n *TwilioNotifier) post(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.cfg.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(n.cfg.BaseURL, "/"), url.PathEscape(n.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(n.cfg.AccountSID, n.cfg.AuthToken)

	resp, err := n.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	var msg twilioMessage
	_ = json.Unmarshal(raw, &msg)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg.Message != "" {
			return "", fmt.Errorf("%s: %s", resp.Status, msg.Message)
		}
		return "", fmt.Errorf("%s", resp.Status)
	}
	if msg.SID == "" {
		return "", fmt.Errorf("response without message sid")
	}
	return msg.SID, nil
}
