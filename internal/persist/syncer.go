// Package persist writes a workspace back to its blob store.
//
// Edits mark their collection dirty and (re)arm a debounce timer. When the
// timer fires every dirty collection is written in one batch. Batches run one
// at a time, so a later batch always carries the newer state. A failed write
// is logged and reported through Status; the collection stays dirty and the
// timer is re-armed with a growing retry delay, so the store catches up once
// it recovers. Nothing is written before Hydrate succeeded or after Close.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/observability"
	"alcyxob/routine-builder/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	DefaultDelay        = time.Second
	DefaultWriteTimeout = 10 * time.Second
	// MaxRetryDelay caps the back-off between retries of a failed batch.
	MaxRetryDelay = 30 * time.Second
)

// Source is the in-memory side: *workspace.Workspace.
type Source interface {
	Marshal(c domain.Collection) ([]byte, error)
	Load(c domain.Collection, blob []byte) error
}

// State summarises the syncer for the status endpoint.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSaving  State = "saving"
	StateSaved   State = "saved"
	StateFailed  State = "failed"
)

// Status is a non-fatal persistence signal.
type Status struct {
	State       State               `json:"state"`
	Message     string              `json:"message,omitempty"`
	Hydrated    bool                `json:"hydrated"`
	LastSavedAt *time.Time          `json:"lastSavedAt,omitempty"`
	Dirty       []domain.Collection `json:"dirty,omitempty"`
}

// Option customises a Syncer.
type Option func(*Syncer)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithWriteTimeout bounds a timer-triggered batch.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now for the status timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// Syncer debounces the writes of one owner's workspace.
type Syncer struct {
	store   repository.BlobStore
	owner   string
	src     Source
	delay   time.Duration
	timeout time.Duration
	now     func() time.Time

	mu        sync.Mutex
	hydrated  bool
	closed    bool
	dirty     map[domain.Collection]bool
	timer     *time.Timer
	retry     time.Duration // next back-off, zero while healthy
	state     State
	message   string
	lastSaved time.Time

	// flushMu serialises batches.
	flushMu sync.Mutex
}

// New creates a syncer for owner. Call Hydrate before handing it edits.
func New(store repository.BlobStore, owner string, src Source, opts ...Option) *Syncer {
	s := &Syncer{
		store:   store,
		owner:   owner,
		src:     src,
		delay:   DefaultDelay,
		timeout: DefaultWriteTimeout,
		now:     time.Now,
		dirty:   make(map[domain.Collection]bool),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads every collection from the store into the source. Collections
// that were never saved keep the source's current content. Until Hydrate
// returns nil, MarkDirty is ignored.
func (s *Syncer) Hydrate(ctx context.Context) error {
	for _, c := range domain.Collections {
		blob, err := s.store.Load(ctx, s.owner, c)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err == nil {
			err = s.src.Load(c, blob)
		}
		if err != nil {
			s.setFailed(fmt.Sprintf("loading %s: %v", c, err))
			return fmt.Errorf("hydrating %s for %s: %w", c, s.owner, err)
		}
	}

	s.mu.Lock()
	s.hydrated = true
	s.state = StateIdle
	s.message = ""
	s.mu.Unlock()
	log.Debug().Str("owner", s.owner).Msg("workspace hydrated")
	return nil
}

// MarkDirty records an edit to c and restarts the debounce timer.
func (s *Syncer) MarkDirty(c domain.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated || s.closed {
		return
	}
	s.dirty[c] = true
	if s.state != StateFailed {
		s.state = StatePending
	}
	s.arm(s.delay)
}

// arm (re)starts the timer. Callers hold s.mu.
func (s *Syncer) arm(d time.Duration) {
	if s.timer == nil {
		s.timer = time.AfterFunc(d, s.fire)
		return
	}
	s.timer.Reset(d)
}

func (s *Syncer) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	// Failures are already logged and reflected in Status.
	_ = s.flush(ctx, true)
}

// Flush writes every dirty collection now.
func (s *Syncer) Flush(ctx context.Context) error {
	return s.flush(ctx, false)
}

func (s *Syncer) flush(ctx context.Context, fromTimer bool) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if fromTimer && s.closed {
		s.mu.Unlock()
		return nil
	}
	batch := make([]domain.Collection, 0, len(s.dirty))
	for _, c := range domain.Collections {
		if s.dirty[c] {
			batch = append(batch, c)
		}
	}
	if len(batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.dirty = make(map[domain.Collection]bool)
	s.state = StateSaving
	s.mu.Unlock()

	var errs []error
	var failed []domain.Collection
	for _, c := range batch {
		err := s.save(ctx, c)
		observability.RecordSave(c, err)
		if err != nil {
			log.Error().Err(err).Str("owner", s.owner).Str("collection", string(c)).Msg("failed to save collection")
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			failed = append(failed, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range failed {
		s.dirty[c] = true
	}
	switch {
	case len(errs) > 0:
		s.state = StateFailed
		s.message = errors.Join(errs...).Error()
		s.scheduleRetry()
	case len(s.dirty) > 0:
		s.state = StatePending
		s.message = ""
	default:
		s.state = StateSaved
		s.message = ""
	}
	if len(errs) == 0 {
		s.retry = 0
		s.lastSaved = s.now()
		observability.RecordBatchSaved(s.lastSaved)
	}
	return errors.Join(errs...)
}

// scheduleRetry re-arms the timer for a failed batch, doubling the delay up
// to MaxRetryDelay. Callers hold s.mu.
func (s *Syncer) scheduleRetry() {
	if s.closed {
		return
	}
	switch {
	case s.retry == 0:
		s.retry = s.delay
	case s.retry < MaxRetryDelay:
		s.retry *= 2
	}
	if s.retry > MaxRetryDelay {
		s.retry = MaxRetryDelay
	}
	s.arm(s.retry)
}

func (s *Syncer) save(ctx context.Context, c domain.Collection) error {
	blob, err := s.src.Marshal(c)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, s.owner, c, blob)
}

// Status reports the current persistence state.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state, Message: s.message, Hydrated: s.hydrated}
	if !s.lastSaved.IsZero() {
		t := s.lastSaved
		st.LastSavedAt = &t
	}
	for _, c := range domain.Collections {
		if s.dirty[c] {
			st.Dirty = append(st.Dirty, c)
		}
	}
	return st
}

// Close refuses further edits, stops the timer and writes what is still
// dirty. A timer batch that is already waiting does nothing once Close ran.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	return s.Flush(ctx)
}

func (s *Syncer) setFailed(msg string) {
	s.mu.Lock()
	s.state = StateFailed
	s.message = msg
	s.mu.Unlock()
}
