package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"go.encore.dev/statusauth/pkg/auth"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Transport delivers a request payload to path and returns the raw response
// body. It is used exactly once per exchange.
type Transport interface {
	Send(ctx context.Context, path string, payload []byte) ([]byte, error)
}

// HTTPTransport is a Transport that POSTs JSON payloads to a host.
type HTTPTransport struct {
	Host   string
	Client *http.Client
}

// NewHTTPTransport returns a transport for host whose round trips are
// bounded by timeout.
func NewHTTPTransport(host string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Host:   host,
		Client: &http.Client{Timeout: timeout},
	}
}

// Send performs a POST request to the specified path.
func (t *HTTPTransport) Send(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, fmt.Sprintf("%s%s", t.Host, path), bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}

	// Set the headers
	req.Header.Set("User-Agent", "Statusauth-SDK")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	// Send the request
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	return body, nil
}

// Client is the underlying raw client for running status exchanges.
//
// It is injected into the status service client by the root package.
type Client struct {
	cfg       *Config
	transport Transport
}

func New(cfg *Config) *Client {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.Host, cfg.timeout())
	}
	return &Client{cfg: cfg, transport: transport}
}

// Identity returns the identity the client authenticates as.
func (c *Client) Identity() string {
	return c.cfg.Identity
}

// Exchange runs one signed request/response exchange against path and
// returns the response only once its tag has been verified.
//
// Every failure is terminal for this exchange; callers wanting to retry
// must call Exchange again, which signs a fresh timestamp.
func (c *Client) Exchange(ctx context.Context, path string) (*auth.ResponsePayload, error) {
	log := c.cfg.logger()

	ex, err := NewExchange(c.cfg.Identity, c.cfg.Key, c.cfg.Clock)
	if err != nil {
		return nil, err
	}
	logger := log.With().Str("exchange_id", ex.ID.String()).Str("identity", c.cfg.Identity).Logger()

	payload, err := ex.Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if err := ex.MarkSent(); err != nil {
		return nil, err
	}
	logger.Debug().Int64("timestamp", *ex.Request().Timestamp).Str("path", path).Msg("sending signed request")

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout())
	defer cancel()
	body, err := c.transport.Send(ctx, path, payload)
	if err != nil {
		logger.Warn().Err(err).Msg("status request failed")
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return nil, err
	}

	if err := ex.Receive(body); err != nil {
		logger.Warn().Err(err).Msg("unable to decode status response")
		return nil, err
	}

	resp, err := ex.Verify()
	if err != nil {
		logger.Warn().Stringer("reason", ex.Reason()).Msg("status response rejected")
		return nil, err
	}

	logger.Debug().Bool("active", resp.Active).Msg("status response verified")
	return resp, nil
}
