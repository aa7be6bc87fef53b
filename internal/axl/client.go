// Package axl is the HTTP client for the league backend. Each backend
// operation has its own URL and its own typed request and response.
package axl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/config"
	"github.com/codr1/axl-portal/internal/metrics"
)

const maxResponseBytes = 1 << 20

// Endpoints holds the URL of every backend operation.
type Endpoints struct {
	Login           string
	Register        string
	Me              string
	UpdateMe        string
	Teams           string
	TeamDetail      string
	CreateTeam      string
	Invitations     string
	InviteByCode    string
	AcceptInvite    string
	DeclineInvite   string
	PresignAvatar   string
	PresignTeamLogo string
	GetEvent        string
	RegisterEvent   string
}

// EndpointsFromConfig maps backend configuration onto Endpoints.
func EndpointsFromConfig(cfg config.BackendConfig) Endpoints {
	return Endpoints{
		Login:           cfg.LoginURL,
		Register:        cfg.RegisterURL,
		Me:              cfg.MeURL,
		UpdateMe:        cfg.UpdateMeURL,
		Teams:           cfg.TeamsURL,
		TeamDetail:      cfg.TeamDetailURL,
		CreateTeam:      cfg.CreateTeamURL,
		Invitations:     cfg.InvitationsURL,
		InviteByCode:    cfg.InviteByCodeURL,
		AcceptInvite:    cfg.AcceptInviteURL,
		DeclineInvite:   cfg.DeclineInviteURL,
		PresignAvatar:   cfg.PresignAvatarURL,
		PresignTeamLogo: cfg.PresignTeamLogoURL,
		GetEvent:        cfg.GetEventURL,
		RegisterEvent:   cfg.RegisterEventURL,
	}
}

type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call describes one round trip. op is the short operation name used in
// fallback error messages and metrics; endpoint names the config entry.
type call struct {
	op       string
	endpoint string
	method   string
	url      string
	token    string
	auth     bool
	query    url.Values
	body     any
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	if strings.TrimSpace(req.url) == "" {
		return &MissingConfigError{Endpoint: req.endpoint}
	}
	if req.auth && req.token == "" {
		return ErrUnauthenticated
	}

	target := req.url
	if len(req.query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	logger := log.Ctx(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveBackend(req.op, 0, time.Since(start))
		logger.Warn().Err(err).Str("operation", req.op).Msg("Backend request failed")
		return &NetworkError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.ObserveBackend(req.op, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Op: req.op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload *errorPayload
		if len(bytes.TrimSpace(raw)) > 0 {
			var decoded errorPayload
			if json.Unmarshal(raw, &decoded) == nil {
				payload = &decoded
			}
		}
		remote := &RemoteError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: remoteMessage(req.op, resp.StatusCode, payload),
		}
		logger.Info().
			Str("operation", req.op).
			Int("status", resp.StatusCode).
			Str("message", remote.Message).
			Msg("Backend returned error")
		return remote
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrInvalidResponse, req.op, err)
	}
	return nil
}
