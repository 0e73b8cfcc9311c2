package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"alcyxob/routine-builder/internal/observability"
	"alcyxob/routine-builder/internal/persist"
	"alcyxob/routine-builder/internal/repository"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/rs/zerolog/log"
)

// --- Error Definitions ---
var (
	ErrInvalidOwner         = errors.New("invalid owner id")
	ErrWorkspaceUnavailable = errors.New("workspace could not be loaded")
	ErrShuttingDown         = errors.New("service is shutting down")
)

// WorkspaceService hands out the in-memory workspace of each owner and keeps
// it synced with the store.
type WorkspaceService interface {
	Open(ctx context.Context, owner string) (*workspace.Workspace, error)
	Status(ctx context.Context, owner string) (persist.Status, error)
	Flush(ctx context.Context, owner string) error
	Shutdown(ctx context.Context) error
}

type workspaceEntry struct {
	ws     *workspace.Workspace
	syncer *persist.Syncer
}

// workspaceService implements WorkspaceService. Workspaces are hydrated on
// first use and live until Shutdown.
type workspaceService struct {
	store      repository.BlobStore
	syncOpts   []persist.Option
	wsOpts     []workspace.Option
	mu         sync.Mutex
	workspaces map[string]*workspaceEntry
	closed     bool
}

// NewWorkspaceService creates a registry backed by store.
func NewWorkspaceService(store repository.BlobStore, syncOpts []persist.Option, wsOpts ...workspace.Option) WorkspaceService {
	return &workspaceService{
		store:      store,
		syncOpts:   syncOpts,
		wsOpts:     wsOpts,
		workspaces: make(map[string]*workspaceEntry),
	}
}

// Open returns the owner's workspace, loading it from the store the first
// time. A workspace that fails to hydrate is not cached, so the next call
// tries again.
func (s *workspaceService) Open(ctx context.Context, owner string) (*workspace.Workspace, error) {
	entry, err := s.entry(ctx, owner)
	if err != nil {
		return nil, err
	}
	return entry.ws, nil
}

func (s *workspaceService) entry(ctx context.Context, owner string) (*workspaceEntry, error) {
	if !repository.ValidOwner(owner) {
		return nil, ErrInvalidOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrShuttingDown
	}
	if e, ok := s.workspaces[owner]; ok {
		return e, nil
	}

	ws := workspace.New(s.wsOpts...)
	syncer := persist.New(s.store, owner, ws, s.syncOpts...)
	if err := syncer.Hydrate(ctx); err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("failed to hydrate workspace")
		return nil, fmt.Errorf("%w: %v", ErrWorkspaceUnavailable, err)
	}
	ws.SetChangeHandler(syncer.MarkDirty)

	e := &workspaceEntry{ws: ws, syncer: syncer}
	s.workspaces[owner] = e
	observability.SetOpenWorkspaces(len(s.workspaces))
	log.Info().Str("owner", owner).Msg("workspace opened")
	return e, nil
}

// Status reports the persistence state of the owner's workspace.
func (s *workspaceService) Status(ctx context.Context, owner string) (persist.Status, error) {
	e, err := s.entry(ctx, owner)
	if err != nil {
		return persist.Status{}, err
	}
	return e.syncer.Status(), nil
}

// Flush writes the owner's pending edits without waiting for the debounce.
func (s *workspaceService) Flush(ctx context.Context, owner string) error {
	e, err := s.entry(ctx, owner)
	if err != nil {
		return err
	}
	return e.syncer.Flush(ctx)
}

// Shutdown flushes every workspace and refuses further Opens.
func (s *workspaceService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	entries := make(map[string]*workspaceEntry, len(s.workspaces))
	for owner, e := range s.workspaces {
		entries[owner] = e
	}
	s.mu.Unlock()

	var errs []error
	for owner, e := range entries {
		if err := e.syncer.Close(ctx); err != nil {
			log.Error().Err(err).Str("owner", owner).Msg("failed to flush workspace on shutdown")
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
		}
	}
	log.Info().Int("workspaces", len(entries)).Msg("workspaces flushed")
	return errors.Join(errs...)
}
