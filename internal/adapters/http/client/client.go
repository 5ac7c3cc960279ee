// Package client implements repository.Store over the golazo HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/golazo/internal/adapters/repository"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/types"
	"github.com/okian/golazo/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// IdempotencyHeader carries the client-chosen key for create requests.
const IdempotencyHeader = "Idempotency-Key"

// ErrUnexpectedStatus is returned for responses that map to no store error.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ErrDuplicate is returned when the server already saw the idempotency key.
var ErrDuplicate = errors.New("duplicate request")

// RemoteStore talks to a running golazo server.
type RemoteStore struct {
	baseURL    string
	httpClient *http.Client
	newKey     func() string
	log        logger.Logger
}

var _ repository.Store = (*RemoteStore)(nil)

// Option configures a RemoteStore.
type Option func(*RemoteStore)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RemoteStore) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout. A client supplied through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(s *RemoteStore) {
		if d > 0 {
			c := *s.httpClient
			c.Timeout = d
			s.httpClient = &c
		}
	}
}

// WithIdempotencyKeys replaces the generator of Idempotency-Key values.
func WithIdempotencyKeys(gen func() string) Option {
	return func(s *RemoteStore) {
		if gen != nil {
			s.newKey = gen
		}
	}
}

// New creates a RemoteStore for the server at baseURL, e.g. "http://localhost:9080".
func New(baseURL string, opts ...Option) *RemoteStore {
	s := &RemoteStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		newKey:     uuid.NewString,
		log:        logger.Named("remote_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchMatches implements repository.Store.
func (s *RemoteStore) FetchMatches(ctx context.Context) ([]model.Match, error) {
	var body []types.Match
	if err := s.do(ctx, http.MethodGet, "/matches", nil, http.StatusOK, &body, ""); err != nil {
		return nil, err
	}
	out := make([]model.Match, len(body))
	for i, m := range body {
		out[i] = m.ToModel()
	}
	return out, nil
}

// CreateMatch implements repository.Store.
func (s *RemoteStore) CreateMatch(ctx context.Context, params model.MatchParameters) (model.Match, error) {
	var body types.Match
	req := types.FromParams(params)
	if err := s.do(ctx, http.MethodPost, "/matches", req, http.StatusCreated, &body, s.newKey()); err != nil {
		return model.Match{}, err
	}
	return body.ToModel(), nil
}

// UpdateMatch implements repository.Store.
func (s *RemoteStore) UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (model.Match, error) {
	var body types.Match
	req := types.FromParams(params)
	if err := s.do(ctx, http.MethodPut, "/matches/"+url.PathEscape(id), req, http.StatusOK, &body, ""); err != nil {
		return model.Match{}, err
	}
	return body.ToModel(), nil
}

// DeleteMatch implements repository.Store.
func (s *RemoteStore) DeleteMatch(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/matches/"+url.PathEscape(id), nil, http.StatusOK, nil, "")
}

// FetchPlayers implements repository.Store.
func (s *RemoteStore) FetchPlayers(ctx context.Context) ([]model.Player, error) {
	var body []types.Player
	if err := s.do(ctx, http.MethodGet, "/players", nil, http.StatusOK, &body, ""); err != nil {
		return nil, err
	}
	return types.ToPlayers(body), nil
}

// CreatePlayer implements repository.Store.
func (s *RemoteStore) CreatePlayer(ctx context.Context, name string) (model.Player, error) {
	if strings.TrimSpace(name) == "" {
		return model.Player{}, repository.ErrInvalidName
	}
	var body types.Player
	req := types.CreatePlayerRequest{Name: name}
	if err := s.do(ctx, http.MethodPost, "/players", req, http.StatusCreated, &body, s.newKey()); err != nil {
		return model.Player{}, err
	}
	return body.ToModel(), nil
}

// FetchRankings returns the server's current rankings.
func (s *RemoteStore) FetchRankings(ctx context.Context) ([]model.Ranking, error) {
	var body []types.Ranking
	if err := s.do(ctx, http.MethodGet, "/rankings", nil, http.StatusOK, &body, ""); err != nil {
		return nil, err
	}
	out := make([]model.Ranking, len(body))
	for i, r := range body {
		out[i] = r.ToModel()
	}
	return out, nil
}

// FetchRankingChanges returns the changeset of the last rankings refresh.
func (s *RemoteStore) FetchRankingChanges(ctx context.Context) (types.RankingChanges, error) {
	var body types.RankingChanges
	if err := s.do(ctx, http.MethodGet, "/rankings/changes", nil, http.StatusOK, &body, ""); err != nil {
		return types.RankingChanges{}, err
	}
	return body, nil
}

// Close implements repository.Store.
func (s *RemoteStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, in any, want int, out any, idempotencyKey string) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	s.log.Debug(ctx, "request", logger.String("method", method), logger.String("path", path))
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(method, path, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps an API error body back to the store sentinels.
func decodeError(method, path string, resp *http.Response) error {
	var body types.ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(raw))
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = repository.ErrNotFound
	case body.Code == types.CodeInvalidName:
		kind = repository.ErrInvalidName
	case body.Code == types.CodeUnknownPlayer:
		kind = repository.ErrUnknownPlayer
	case body.Code == types.CodeInvalidGoals:
		kind = repository.ErrInvalidGoals
	case body.Code == types.CodeDuplicate:
		kind = ErrDuplicate
	default:
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, body.Message)
	}
	return fmt.Errorf("%s %s: %w: %s", method, path, kind, body.Message)
}
