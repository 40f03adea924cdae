// Package sync reconciles a remote todo API with a local cache under
// intermittent connectivity. The Syncer owns the in-memory item list the
// presentation layer renders; every operation keeps that list, its derived
// stats, and the cache mirror consistent whether or not the server is
// reachable.
package sync

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/internal/observability"
	appErrors "todosync/pkg/errors"
)

// localIDPrefix marks ids generated while offline. Remote ids are UUIDs
// without the prefix, so collisions are impossible.
const localIDPrefix = "local-"

// Advisory messages surfaced through LastError. Callers clear them
// explicitly; the core never clears on its own.
const (
	offlineAdvisory = "offline: showing locally cached todos"
	retryAdvisory   = "server unreachable: change not saved remotely, retry when back online"
)

// Syncer is the synchronization core. It is safe for concurrent use; the
// mutex gives memory safety only. Semantics stay last-write-wins with no
// version checks, matching the server.
type Syncer struct {
	mu     sync.Mutex
	remote Remote
	cache  Cache
	logger *zap.Logger

	items   []todo.Item
	stats   todo.Stats
	online  bool
	lastErr string

	now     func() time.Time
	newID   func() string
	metrics *observability.Collector
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock overrides the time source. Tests use it for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) {
		s.now = now
	}
}

// WithIDGenerator overrides the offline id generator. The generated ids
// must keep the local prefix guarantee.
func WithIDGenerator(gen func() string) Option {
	return func(s *Syncer) {
		s.newID = gen
	}
}

// WithMetrics records cache fallbacks on the given collector.
func WithMetrics(collector *observability.Collector) Option {
	return func(s *Syncer) {
		s.metrics = collector
	}
}

// New creates a Syncer starting in offline mode. Connectivity is pushed in
// via SetOnline; the core never probes on its own.
func New(remote Remote, cache Cache, logger *zap.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		remote: remote,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		newID: func() string {
			return localIDPrefix + uuid.NewString()
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load refreshes the item list. Online it fetches from the server and
// mirrors into the cache; on fetch failure, or offline, it falls back to
// the cache and sets an advisory. Load never fails: it degrades.
func (s *Syncer) Load(ctx context.Context) []todo.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online {
		items, err := s.remote.List(ctx)
		if err == nil {
			s.items = todo.Sanitize(items)
			s.recompute()
			s.mirrorAll(ctx)
			// A fresh server list supersedes any earlier advisory.
			s.lastErr = ""
			return s.snapshot()
		}
		s.logger.Warn("remote list failed, falling back to cache", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.SyncFallbacks.Inc()
	}

	cached, err := s.cache.ReadAll(ctx)
	if err != nil {
		s.logger.Warn("cache read failed", zap.Error(err))
		cached = nil
	}
	s.items = todo.Sanitize(cached)
	s.recompute()
	s.lastErr = offlineAdvisory
	return s.snapshot()
}

// Add creates a todo. Online the server assigns the id; offline the item
// gets a locally generated one that the next online load will discard.
func (s *Syncer) Add(ctx context.Context, text string) (todo.Item, error) {
	normalized, err := todo.NormalizeText(text)
	if err != nil {
		return todo.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var item todo.Item
	if s.online {
		created, err := s.remote.Create(ctx, normalized)
		if err != nil {
			s.remoteFailed("create", err)
			return todo.Item{}, err
		}
		if !created.HasResolvableID() {
			err := appErrors.NewInvariant("server returned a todo without a usable id")
			s.remoteFailed("create", err)
			return todo.Item{}, err
		}
		item = created
	} else {
		item, err = todo.New(s.newID(), normalized, s.now())
		if err != nil {
			return todo.Item{}, err
		}
	}

	// The in-memory append happens regardless of the mirror outcome; the
	// cache is advisory.
	s.items = append(s.items, item)
	s.recompute()
	s.mirrorUpsert(ctx, item)
	return item, nil
}

// Update applies a partial update by id. The patched text is validated the
// same way as Add.
func (s *Syncer) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	if patch.IsZero() {
		return todo.Item{}, appErrors.NewValidation("no fields to update")
	}
	if patch.Text != nil {
		normalized, err := todo.NormalizeText(*patch.Text)
		if err != nil {
			return todo.Item{}, err
		}
		patch.Text = &normalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online {
		updated, err := s.remote.Update(ctx, id, patch)
		if err != nil {
			s.remoteFailed("update", err)
			return todo.Item{}, err
		}
		s.replaceOrAppend(updated)
		s.recompute()
		s.mirrorPatch(ctx, updated, patch)
		return updated, nil
	}

	updated, err := s.cache.Update(ctx, id, patch)
	if err != nil {
		return todo.Item{}, err
	}
	s.replaceOrAppend(updated)
	s.recompute()
	return updated, nil
}

// ToggleComplete flips a todo's completion state. Online the server
// computes the flip and the core trusts the returned record; offline the
// flip comes from the last locally known value.
func (s *Syncer) ToggleComplete(ctx context.Context, id string) (todo.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online {
		toggled, err := s.remote.Toggle(ctx, id)
		if err != nil {
			s.remoteFailed("toggle", err)
			return todo.Item{}, err
		}
		s.replaceOrAppend(toggled)
		s.recompute()
		s.mirrorPatch(ctx, toggled, todo.Patch{Completed: &toggled.Completed})
		return toggled, nil
	}

	current, found := s.find(id)
	if !found {
		cached, err := s.cache.ReadAll(ctx)
		if err != nil {
			s.logger.Warn("cache read failed", zap.Error(err))
		}
		for _, c := range cached {
			if c.ID == id {
				current, found = c, true
				break
			}
		}
	}
	if !found {
		return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
	}

	flipped := current.Toggled(s.now())
	if updated, err := s.cache.Update(ctx, id, todo.Patch{Completed: &flipped.Completed}); err == nil {
		flipped = updated
	} else if appErrors.IsNotFound(err) {
		s.mirrorUpsert(ctx, flipped)
	} else {
		s.logger.Warn("cache update failed", zap.String("id", id), zap.Error(err))
	}

	s.replaceOrAppend(flipped)
	s.recompute()
	return flipped, nil
}

// Remove deletes a todo by id. Online, absence from the cache is not an
// error; offline, a missing cache record is a not-found failure.
func (s *Syncer) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online {
		if err := s.remote.Delete(ctx, id); err != nil {
			s.remoteFailed("delete", err)
			return err
		}
		if _, err := s.cache.Delete(ctx, id); err != nil && !appErrors.IsNotFound(err) {
			s.logger.Warn("cache delete failed", zap.String("id", id), zap.Error(err))
		}
		s.removeFromItems(id)
		s.recompute()
		return nil
	}

	if _, err := s.cache.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFromItems(id)
	s.recompute()
	return nil
}

// RemoveCompleted deletes every completed todo and returns how many
// disappeared from the in-memory list. Calling it again is a no-op.
func (s *Syncer) RemoveCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online {
		if _, err := s.remote.DeleteCompleted(ctx); err != nil {
			s.remoteFailed("delete completed", err)
			return 0, err
		}
	}

	retained := make([]todo.Item, 0, len(s.items))
	for _, item := range s.items {
		if !item.Completed {
			retained = append(retained, item)
		}
	}
	removed := len(s.items) - len(retained)
	s.items = retained
	s.recompute()

	if s.online {
		// Full resync of the filtered set, not partial deletes.
		s.mirrorAll(ctx)
	} else {
		s.filterCache(ctx)
	}

	return removed, nil
}

// Items returns a snapshot copy of the current list.
func (s *Syncer) Items() []todo.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Stats returns the derived counts for the current list.
func (s *Syncer) Stats() todo.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Online reports the current connectivity flag.
func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline pushes a connectivity edge into the core. Flipping back online
// does not reconcile local-only items; the next Load overwrites them with
// the server's list.
func (s *Syncer) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online == online {
		return
	}
	s.online = online

	if online {
		if n := s.countLocalOnly(); n > 0 {
			s.logger.Warn("back online with unsynced local todos, next load will drop them",
				zap.Int("count", n),
			)
		}
	}
	s.logger.Info("connectivity changed", zap.Bool("online", online))
}

// LastError returns the current advisory message, empty when none.
func (s *Syncer) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError clears the advisory message.
func (s *Syncer) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// remoteFailed logs a failed remote mutation and raises the advisory for
// infrastructure failures. Validation and not-found responses are the
// caller's to handle and leave the advisory alone.
func (s *Syncer) remoteFailed(op string, err error) {
	s.logger.Warn("remote "+op+" failed", zap.Error(err))
	if appErrors.IsNetwork(err) || appErrors.IsServer(err) || appErrors.IsInvariant(err) {
		s.lastErr = retryAdvisory
	}
}

// mirrorAll overwrites the cache with the in-memory list. Advisory only.
func (s *Syncer) mirrorAll(ctx context.Context) {
	if err := s.cache.WriteAll(ctx, s.items); err != nil {
		s.logger.Warn("cache mirror failed", zap.Error(err))
	}
}

// mirrorUpsert stores one item into the cache. Advisory only.
func (s *Syncer) mirrorUpsert(ctx context.Context, item todo.Item) {
	if _, err := s.cache.Upsert(ctx, item); err != nil {
		s.logger.Warn("cache upsert failed", zap.String("id", item.ID), zap.Error(err))
	}
}

// mirrorPatch applies a patch to the cached record; a record missing from
// the cache is stored as new instead of propagating the failure.
func (s *Syncer) mirrorPatch(ctx context.Context, item todo.Item, patch todo.Patch) {
	_, err := s.cache.Update(ctx, item.ID, patch)
	if err == nil {
		return
	}
	if appErrors.IsNotFound(err) {
		s.mirrorUpsert(ctx, item)
		return
	}
	s.logger.Warn("cache update failed", zap.String("id", item.ID), zap.Error(err))
}

// filterCache removes completed records from the cache, keeping records
// the in-memory list never saw. Advisory only.
func (s *Syncer) filterCache(ctx context.Context) {
	cached, err := s.cache.ReadAll(ctx)
	if err != nil {
		s.logger.Warn("cache read failed", zap.Error(err))
		return
	}
	retained := make([]todo.Item, 0, len(cached))
	for _, item := range cached {
		if !item.Completed {
			retained = append(retained, item)
		}
	}
	if err := s.cache.WriteAll(ctx, retained); err != nil {
		s.logger.Warn("cache mirror failed", zap.Error(err))
	}
}

func (s *Syncer) recompute() {
	s.stats = todo.ComputeStats(s.items)
}

func (s *Syncer) snapshot() []todo.Item {
	out := make([]todo.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Syncer) find(id string) (todo.Item, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return todo.Item{}, false
}

func (s *Syncer) replaceOrAppend(item todo.Item) {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

func (s *Syncer) removeFromItems(id string) {
	retained := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			retained = append(retained, item)
		}
	}
	s.items = retained
}

func (s *Syncer) countLocalOnly() int {
	n := 0
	for _, item := range s.items {
		if strings.HasPrefix(item.ID, localIDPrefix) {
			n++
		}
	}
	return n
}
