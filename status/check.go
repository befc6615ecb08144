package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.encore.dev/statusauth/internal/jsonerr"
	"go.encore.dev/statusauth/pkg/auth"
	"go.encore.dev/statusauth/status/types"
)

const (
	// DefaultFreshnessWindow is how far a request timestamp may be from the
	// responder's clock.
	DefaultFreshnessWindow = 5 * time.Minute

	// DefaultReplayTTL is how long tags are remembered when the freshness
	// window is disabled.
	DefaultReplayTTL = 10 * time.Minute

	// DefaultTerm is the subscription length FixedTerm hands out.
	DefaultTerm = 7 * 24 * time.Hour

	maxRequestBytes = 64 << 10
)

var (
	errInvalidRequest = errors.New("invalid request")
	errInternal       = errors.New("internal error")
)

// CheckStatus runs one authenticated status exchange.
//
// It returns the status only when the responder's tag verifies. Identity
// and tag mismatches are both reported as auth.ErrAuthenticationFailed.
func (c *Client) CheckStatus(ctx context.Context) (*types.StatusResult, error) {
	resp, err := c.client.Exchange(ctx, auth.RequestPath)
	if err != nil {
		return nil, fmt.Errorf("status check failed: %w", err)
	}

	return &types.StatusResult{
		Identity:   resp.Identity,
		Active:     resp.Active,
		ExpiresAt:  resp.ExpiresAt,
		ServerTime: time.Unix(resp.ServerTime, 0).UTC(),
	}, nil
}

// SubscriptionLookup reports when an identity's subscription ends.
type SubscriptionLookup interface {
	ExpiresAt(identity string) (time.Time, bool)
}

// ReplayGuard records accepted request tags; see package replay.
type ReplayGuard interface {
	Seen(ctx context.Context, identity string, tag auth.Tag, ttl time.Duration) (bool, error)
}

// FixedTerm gives every identity known to Keys a subscription ending Term
// after Start.
type FixedTerm struct {
	Keys  auth.KeyLookup
	Start time.Time
	Term  time.Duration
}

func (f *FixedTerm) ExpiresAt(identity string) (time.Time, bool) {
	if _, ok := f.Keys.LookupKey(identity); !ok {
		return time.Time{}, false
	}
	return f.Start.Add(f.Term), true
}

// HandlerConfig configures the responder handler.
type HandlerConfig struct {
	Keys          auth.KeyLookup
	Subscriptions SubscriptionLookup
	Clock         clock.Clock
	Logger        *zerolog.Logger

	// FreshnessWindow bounds the skew between request timestamps and the
	// responder's clock. Zero disables the check.
	FreshnessWindow time.Duration

	// Replay, if set, rejects a second use of the same request tag.
	Replay ReplayGuard
}

// NewHandler returns a [http.HandlerFunc] that answers signed status requests.
//
// The request must carry a tag over the canonical request message for its
// user_id and timestamp. Unknown identities, bad tags, stale timestamps and
// replays all get the same 401 "authentication failed" body; the specific
// reason is only logged.
//
// The response carries the identity, whether its subscription is active,
// the expiry, the server time, and a tag over the canonical response message
// under the same shared key.
func NewHandler(cfg HandlerConfig) http.HandlerFunc {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	replayTTL := 2 * cfg.FreshnessWindow
	if replayTTL <= 0 {
		replayTTL = DefaultReplayTTL
	}

	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			jsonerr.Error(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
			return
		}

		// Decode the request
		body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBytes))
		if err != nil {
			logger.Err(err).Msg("unable to read status request")
			jsonerr.Error(w, errInvalidRequest, http.StatusBadRequest)
			return
		}
		payload := &auth.RequestPayload{}
		if err := auth.Unmarshal(body, payload); err != nil ||
			payload.Identity == "" || payload.Timestamp == nil || payload.Tag == "" {
			logger.Debug().Err(err).Msg("malformed status request")
			jsonerr.Error(w, errInvalidRequest, http.StatusBadRequest)
			return
		}
		reqLog := logger.With().Str("identity", payload.Identity).Int64("timestamp", *payload.Timestamp).Logger()

		// Authenticate the caller
		key, err := auth.VerifyRequest(cfg.Keys, payload)
		if err != nil {
			if errors.Is(err, auth.ErrCryptoBackend) {
				reqLog.Err(err).Msg("mac backend failed while verifying status request")
				jsonerr.Error(w, errInternal, http.StatusInternalServerError)
				return
			}
			reqLog.Warn().Err(err).Msg("status request failed authentication")
			jsonerr.Error(w, auth.ErrAuthenticationFailed, http.StatusUnauthorized)
			return
		}
		if err := auth.CheckFreshness(clk, *payload.Timestamp, cfg.FreshnessWindow); err != nil {
			reqLog.Warn().Err(err).Msg("stale status request")
			jsonerr.Error(w, auth.ErrAuthenticationFailed, http.StatusUnauthorized)
			return
		}
		if cfg.Replay != nil {
			seen, err := cfg.Replay.Seen(req.Context(), payload.Identity, payload.Tag, replayTTL)
			if err != nil {
				reqLog.Err(err).Msg("replay guard unavailable")
				jsonerr.Error(w, errInternal, http.StatusServiceUnavailable)
				return
			}
			if seen {
				reqLog.Warn().Err(auth.ErrReplayDetected).Msg("status request rejected")
				jsonerr.Error(w, auth.ErrAuthenticationFailed, http.StatusUnauthorized)
				return
			}
		}

		// Build and sign the response
		now := clk.Now()
		resp := &auth.ResponsePayload{
			Identity:   payload.Identity,
			ServerTime: now.Unix(),
		}
		if expiresAt, ok := cfg.Subscriptions.ExpiresAt(payload.Identity); ok {
			resp.Active = !now.After(expiresAt)
			resp.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
		} else {
			reqLog.Warn().Msg("authenticated identity has no subscription record")
		}

		if err := auth.SignResponse(key, resp); err != nil {
			reqLog.Err(err).Msg("unable to sign status response")
			jsonerr.Error(w, errInternal, http.StatusInternalServerError)
			return
		}

		reqLog.Info().Bool("active", resp.Active).Msg("status request served")
		jsonerr.Write(w, http.StatusOK, resp)
	}
}
