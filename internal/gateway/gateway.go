// Package gateway owns the single shared HTTP client for the SubDock
// service. Every request flows through an ordered transport pipeline:
// credential injection first, then the network, then unauthorized
// interception on the way back. By the time a caller sees a 401 the stored
// credential is already gone and the login redirect has fired.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/subdock/subdock-cli/internal/models"
)

const requestTimeout = 10 * time.Second

// TokenStore is the slice of the credential store the gateway needs.
type TokenStore interface {
	Get() (string, error)
	Clear() error
}

// APIError is a non-2xx response from the service, with the server's own
// message when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

type Config struct {
	// BaseURL is the service root, e.g. "https://subdock.example.com".
	// The /api prefix is appended here and nowhere else.
	BaseURL string
	Store   TokenStore
	// OnUnauthorized runs after the store has been cleared, once per 401
	// response. It is the client's hard redirect to the login route.
	OnUnauthorized func()
	Logger         zerolog.Logger
}

type Gateway struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func New(cfg Config) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("Store is required")
	}

	onUnauthorized := cfg.OnUnauthorized
	if onUnauthorized == nil {
		onUnauthorized = func() {}
	}

	transport := &unauthorizedTransport{
		store:    cfg.Store,
		navigate: onUnauthorized,
		log:      cfg.Logger,
		next: &authTransport{
			store: cfg.Store,
			next:  http.DefaultTransport,
		},
	}

	return &Gateway{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/api",
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		log: cfg.Logger,
	}, nil
}

// authTransport attaches the stored bearer token to every outgoing request.
// A store read failure rejects the request before it reaches the network.
type authTransport struct {
	store TokenStore
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

// unauthorizedTransport tears the session down on any 401 before the
// response reaches caller code. Every other outcome passes through
// untouched.
type unauthorizedTransport struct {
	store    TokenStore
	navigate func()
	log      zerolog.Logger
	next     http.RoundTripper
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.log.Warn().Str("path", req.URL.Path).Msg("session no longer valid, clearing credential")
		if clearErr := t.store.Clear(); clearErr != nil {
			t.log.Error().Err(clearErr).Msg("failed to clear credential")
		}
		t.navigate()
	}
	return resp, err
}

func (g *Gateway) Get(ctx context.Context, path string, out interface{}) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

func (g *Gateway) Post(ctx context.Context, path string, body, out interface{}) error {
	return g.do(ctx, http.MethodPost, path, body, out)
}

func (g *Gateway) Put(ctx context.Context, path string, body, out interface{}) error {
	return g.do(ctx, http.MethodPut, path, body, out)
}

func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	g.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp models.ErrorResponse
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			if json.Unmarshal(data, &errResp) == nil {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
