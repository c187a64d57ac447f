package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"pagebot/internal/config"
	"pagebot/internal/metrics"
)

// ErrSendFailed wraps any Send API delivery failure.
var ErrSendFailed = errors.New("send failed")

// Client is the outbound-send collaborator. Implementations must be safe for
// concurrent use.
type Client interface {
	// Send delivers one message to the recipient and returns the platform
	// acknowledgement.
	Send(ctx context.Context, recipientID string, msg Message) (*SendResult, error)

	// SenderAction signals typing_on, typing_off, or mark_seen.
	SenderAction(ctx context.Context, recipientID string, action string) error
}

// sendRequest is the Send API request envelope.
type sendRequest struct {
	Recipient    Recipient `json:"recipient"`
	Message      *Message  `json:"message,omitempty"`
	SenderAction string    `json:"sender_action,omitempty"`
}

// GraphClient talks to the platform Graph API. Transient failures are
// retried with exponential backoff and a circuit breaker sheds load when the
// platform is persistently failing.
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewGraphClient creates a Send API client from the messenger configuration.
func NewGraphClient(cfg config.MessengerConfig, logger *slog.Logger) *GraphClient {
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "send_api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
	})

	return &GraphClient{
		httpClient: &http.Client{Timeout: cfg.SendTimeout},
		baseURL:    cfg.GraphURL,
		token:      cfg.PageToken,
		maxRetries: cfg.SendMaxRetries,
		breaker:    breaker,
		logger:     logger.With("component", "messenger"),
	}
}

// Send delivers one message and returns the platform acknowledgement.
func (c *GraphClient) Send(ctx context.Context, recipientID string, msg Message) (*SendResult, error) {
	result, err := c.post(ctx, sendRequest{
		Recipient: Recipient{ID: recipientID},
		Message:   &msg,
	})
	if err != nil {
		metrics.SendsTotal.WithLabelValues("failure").Inc()
		c.logger.ErrorContext(ctx, "Unable to send message", "recipient_id", recipientID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	metrics.SendsTotal.WithLabelValues("success").Inc()
	c.logger.InfoContext(ctx, "Sent message",
		"recipient_id", result.RecipientID, "message_id", result.MessageID)
	return result, nil
}

// SenderAction signals a sender action to the recipient. Failures here are
// never worth retrying aggressively, so the same path is reused and the
// caller decides whether the error matters.
func (c *GraphClient) SenderAction(ctx context.Context, recipientID string, action string) error {
	_, err := c.post(ctx, sendRequest{
		Recipient:    Recipient{ID: recipientID},
		SenderAction: action,
	})
	if err != nil {
		return fmt.Errorf("sender action %s: %w", action, err)
	}
	return nil
}

func (c *GraphClient) post(ctx context.Context, req sendRequest) (*SendResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, url.QueryEscape(c.token))

	var result *SendResult
	operation := func() error {
		res, err := c.breaker.Execute(func() (any, error) {
			return c.doPost(ctx, endpoint, body)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = res.(*SendResult)
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *GraphClient) doPost(ctx context.Context, endpoint string, body []byte) (*SendResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("send api returned status %d: %s", resp.StatusCode, respBody)
		// Client errors won't heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	result := &SendResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("failed to decode send api response: %w", err)
	}
	return result, nil
}
