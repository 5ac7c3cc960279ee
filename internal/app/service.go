// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// Mutations go straight to the store and then enqueue a refresh event. Refresh
// workers recompute the rankings from a full fetch and publish them to a feed
// that remembers the changeset of the last publication.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/golazo/internal/adapters/mq/queue"
	workerpool "github.com/okian/golazo/internal/adapters/mq/worker"
	"github.com/okian/golazo/internal/adapters/repository"
	"github.com/okian/golazo/internal/domain/dedupe"
	"github.com/okian/golazo/internal/domain/feed"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/ranking"
	"github.com/okian/golazo/pkg/logger"
	"github.com/okian/golazo/pkg/metrics"
)

const (
	rankingsFeed         = "rankings"
	runtimeStatsInterval = 5 * time.Second
	defaultQueueSize     = 1024
	defaultDedupeSize    = 10_000
	stopDrainTimeout     = 5 * time.Second
)

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	engine     *ranking.Engine
	rankings   *feed.Feed[model.Ranking, string]
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	rankingOpts []ranking.Option

	// State
	started     bool
	stopCh      chan struct{}
	refreshMu   sync.Mutex
	refreshes   atomic.Uint64
	lastRefresh atomic.Int64

	logger logger.Logger
}

// New constructs a new Service. Without WithStore it keeps data in memory.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: max(1, runtime.NumCPU()/2),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.engine = ranking.NewEngine(s.rankingOpts...)
	s.rankings = feed.New(model.RankingKey, model.RankingContentEqual)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the refresh queue and workers and schedules the first refresh.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting ranking service...")

	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s)
	// Workers outlive the start request; Stop ends them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	go s.runtimeStatsLoop(s.stopCh)

	s.started = true
	s.eventQueue.Enqueue(ctx, newRefreshEvent(model.ReasonStartup))

	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue, lets the workers drain it and waits for them.
// The store is left open for its owner to close.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ranking service...")

	_ = s.eventQueue.Close()
	close(s.stopCh)

	drained := make(chan struct{})
	go func() {
		s.workerPool.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = s.workerPool.Shutdown(context.WithoutCancel(ctx))
	case <-time.After(stopDrainTimeout):
		err = s.workerPool.Shutdown(ctx)
	}
	metrics.UpdateWorkerCount(0)

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
	return err
}

// Players returns the roster ordered by name.
func (s *Service) Players(ctx context.Context) ([]model.Player, error) {
	return s.store.FetchPlayers(ctx)
}

// Matches returns the match history in creation order.
func (s *Service) Matches(ctx context.Context) ([]model.Match, error) {
	return s.store.FetchMatches(ctx)
}

// CreatePlayer adds a player and schedules a refresh.
func (s *Service) CreatePlayer(ctx context.Context, name string) (model.Player, error) {
	if err := s.admit(); err != nil {
		return model.Player{}, err
	}
	p, err := s.store.CreatePlayer(ctx, name)
	if err != nil {
		return model.Player{}, err
	}
	s.notify(ctx, model.ReasonPlayerCreated)
	return p, nil
}

// CreateMatch records a match and schedules a refresh.
func (s *Service) CreateMatch(ctx context.Context, params model.MatchParameters) (model.Match, error) {
	if err := s.admit(); err != nil {
		return model.Match{}, err
	}
	m, err := s.store.CreateMatch(ctx, params)
	if err != nil {
		return model.Match{}, err
	}
	s.notify(ctx, model.ReasonMatchCreated)
	return m, nil
}

// UpdateMatch replaces a match and schedules a refresh.
func (s *Service) UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (model.Match, error) {
	if err := s.admit(); err != nil {
		return model.Match{}, err
	}
	m, err := s.store.UpdateMatch(ctx, id, params)
	if err != nil {
		return model.Match{}, err
	}
	s.notify(ctx, model.ReasonMatchUpdated)
	return m, nil
}

// DeleteMatch removes a match and schedules a refresh.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	if err := s.admit(); err != nil {
		return err
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, model.ReasonMatchDeleted)
	return nil
}

// Rankings returns the latest published rankings, computing them first if
// nothing was published yet.
func (s *Service) Rankings(ctx context.Context) ([]model.Ranking, error) {
	if s.rankings.Version() == 0 {
		if err := s.Refresh(ctx, model.ReasonStartup); err != nil && !errors.Is(err, ErrRefreshFetch) {
			return nil, err
		}
	}
	return s.rankings.Items(), nil
}

// RankingChanges returns the last published rankings with the changeset that
// produced them from the previous publication.
func (s *Service) RankingChanges(ctx context.Context) (feed.Update[model.Ranking], error) {
	if s.rankings.Version() == 0 {
		if err := s.Refresh(ctx, model.ReasonStartup); err != nil && !errors.Is(err, ErrRefreshFetch) {
			return feed.Update[model.Ranking]{}, err
		}
	}
	return s.rankings.Latest(), nil
}

// Refresh fetches the roster and history, recomputes the rankings and
// publishes them. A failed fetch is replaced by an empty list; the rankings
// are still published and ErrRefreshFetch is returned. Nothing is published
// once ctx is done.
func (s *Service) Refresh(ctx context.Context, reason model.RefreshReason) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var fetchErrs []error
	players, err := s.store.FetchPlayers(ctx)
	if err != nil {
		fetchErrs = append(fetchErrs, s.fetchFailed(ctx, "players", err))
		players = []model.Player{}
	}
	matches, err := s.store.FetchMatches(ctx)
	if err != nil {
		fetchErrs = append(fetchErrs, s.fetchFailed(ctx, "matches", err))
		matches = []model.Match{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	rankings := s.engine.Compute(players, matches)
	metrics.RecordRankingComputation(float64(time.Since(start).Microseconds())/1000.0, len(rankings))

	update := s.rankings.Publish(rankings)
	cs := update.Changeset
	metrics.RecordChangeset(rankingsFeed, len(cs.Deletions), len(cs.Modifications), len(cs.Insertions))
	s.refreshes.Add(1)
	s.lastRefresh.Store(time.Now().UnixNano())

	s.logger.Debug(ctx, "rankings refreshed",
		logger.String("reason", string(reason)),
		logger.Uint64("version", update.Version),
		logger.Int("players", len(players)),
		logger.Int("matches", len(matches)),
		logger.Int("changes", cs.Len()),
	)

	if len(fetchErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrRefreshFetch, errors.Join(fetchErrs...))
	}
	return nil
}

func (s *Service) fetchFailed(ctx context.Context, source string, err error) error {
	metrics.RecordRefreshFailure(source)
	s.logger.Error(ctx, "refresh fetch failed, using empty list",
		logger.String("source", source),
		logger.Error(err),
	)
	return fmt.Errorf("fetch %s: %w", source, err)
}

// admit sheds mutations while the refresh queue is full.
func (s *Service) admit() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil
	}
	if s.eventQueue.Len(context.Background()) >= s.eventQueue.Capacity() {
		metrics.RecordQueueRejected("shed")
		return ErrBackpressure
	}
	return nil
}

// notify schedules a refresh. Without running workers it refreshes inline.
// A rejected event is harmless: a pending event already covers the change.
func (s *Service) notify(ctx context.Context, reason model.RefreshReason) {
	s.mu.RLock()
	started := s.started
	q := s.eventQueue
	s.mu.RUnlock()

	if !started {
		if err := s.Refresh(ctx, reason); err != nil {
			s.logger.Warn(ctx, "inline refresh failed", logger.Error(err))
		}
		return
	}
	if !q.Enqueue(ctx, newRefreshEvent(reason)) {
		s.logger.Debug(ctx, "refresh event not queued", logger.String("reason", string(reason)))
	}
}

func newRefreshEvent(reason model.RefreshReason) model.RefreshEvent {
	return model.RefreshEvent{ID: uuid.NewString(), Reason: reason, At: time.Now()}
}

func (s *Service) runtimeStatsLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(runtimeStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			metrics.UpdateSystemMemoryUsage(ms.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// SeenAndRecord atomically checks if an idempotency key was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordDuplicateRequest()
	}
	return seen
}

// Unrecord forgets an idempotency key so that the request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the current number of remembered idempotency keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"dedupeEntries":   s.deduper.Size(),
		"rankingsVersion": s.rankings.Version(),
		"refreshes":       s.refreshes.Load(),
		"rankedPlayers":   len(s.rankings.Items()),
	}
	if last := s.lastRefresh.Load(); last > 0 {
		stats["lastRefresh"] = time.Unix(0, last).UTC().Format(time.RFC3339Nano)
	}
	if s.started {
		stats["queueLength"] = s.eventQueue.Len(context.Background())
	}
	return stats
}
