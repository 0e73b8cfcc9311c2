package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/observability"
	"alcyxob/routine-builder/internal/playback"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("playback session not found")

// Abandoned players never call Stop, so sessions expire after being idle and
// each owner keeps at most MaxSessionsPerOwner of them.
const (
	SessionIdleTimeout  = 2 * time.Hour
	MaxSessionsPerOwner = 8
)

// PlaybackView is a frame together with the session it belongs to.
type PlaybackView struct {
	SessionID string `json:"sessionId"`
	RoutineID int64  `json:"routineId"`
	playback.Frame
}

// PlaybackService keeps playback cursors in memory. Sessions belong to the
// owner that started them.
type PlaybackService interface {
	Start(ctx context.Context, owner string, routineID int64) (PlaybackView, error)
	Current(ctx context.Context, owner, sessionID string) (PlaybackView, error)
	Advance(ctx context.Context, owner, sessionID string) (PlaybackView, error)
	Retreat(ctx context.Context, owner, sessionID string) (PlaybackView, error)
	Stop(ctx context.Context, owner, sessionID string) error
}

type ownedSession struct {
	owner    string
	session  *playback.Session
	lastUsed time.Time
}

type playbackService struct {
	workspaces WorkspaceService
	newID      func() string
	now        func() time.Time
	mu         sync.Mutex
	sessions   map[string]*ownedSession
}

// NewPlaybackService creates a playback service reading routines through workspaces.
func NewPlaybackService(workspaces WorkspaceService) PlaybackService {
	return &playbackService{
		workspaces: workspaces,
		newID:      uuid.NewString,
		now:        time.Now,
		sessions:   make(map[string]*ownedSession),
	}
}

func (s *playbackService) Start(ctx context.Context, owner string, routineID int64) (PlaybackView, error) {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return PlaybackView{}, err
	}
	r, ok := ws.Routine(routineID)
	if !ok {
		return PlaybackView{}, workspace.ErrRoutineNotFound
	}
	session, err := playback.NewSession(s.newID(), r)
	if err != nil {
		return PlaybackView{}, err
	}
	frame, err := session.Current(r, ws)
	if err != nil {
		return PlaybackView{}, err
	}

	s.mu.Lock()
	now := s.now()
	s.prune(owner, now)
	s.sessions[session.ID] = &ownedSession{owner: owner, session: session, lastUsed: now}
	observability.SetPlaybackSessions(len(s.sessions))
	s.mu.Unlock()

	return view(session, frame), nil
}

func (s *playbackService) Current(ctx context.Context, owner, sessionID string) (PlaybackView, error) {
	return s.step(ctx, owner, sessionID, (*playback.Session).Current)
}

func (s *playbackService) Advance(ctx context.Context, owner, sessionID string) (PlaybackView, error) {
	return s.step(ctx, owner, sessionID, (*playback.Session).Advance)
}

func (s *playbackService) Retreat(ctx context.Context, owner, sessionID string) (PlaybackView, error) {
	return s.step(ctx, owner, sessionID, (*playback.Session).Retreat)
}

func (s *playbackService) Stop(_ context.Context, owner, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok || entry.owner != owner {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	observability.SetPlaybackSessions(len(s.sessions))
	return nil
}

type stepFunc func(*playback.Session, domain.Routine, playback.Catalog) (playback.Frame, error)

// step re-reads the routine before moving the cursor so edits made while
// playing show up on the next frame.
func (s *playbackService) step(ctx context.Context, owner, sessionID string, move stepFunc) (PlaybackView, error) {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return PlaybackView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok || entry.owner != owner {
		return PlaybackView{}, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(entry.lastUsed) > SessionIdleTimeout {
		delete(s.sessions, sessionID)
		observability.SetPlaybackSessions(len(s.sessions))
		return PlaybackView{}, ErrSessionNotFound
	}
	entry.lastUsed = now
	r, ok := ws.Routine(entry.session.RoutineID)
	if !ok {
		return PlaybackView{}, workspace.ErrRoutineNotFound
	}
	frame, err := move(entry.session, r, ws)
	if err != nil {
		return PlaybackView{}, err
	}
	return view(entry.session, frame), nil
}

// prune drops idle sessions and makes room for one more session of owner by
// evicting its least recently used ones. Callers hold s.mu.
func (s *playbackService) prune(owner string, now time.Time) {
	var (
		count  int
		oldest string
	)
	for id, entry := range s.sessions {
		if now.Sub(entry.lastUsed) > SessionIdleTimeout {
			delete(s.sessions, id)
			continue
		}
		if entry.owner == owner {
			count++
			if oldest == "" || entry.lastUsed.Before(s.sessions[oldest].lastUsed) {
				oldest = id
			}
		}
	}
	for count >= MaxSessionsPerOwner && oldest != "" {
		delete(s.sessions, oldest)
		count--
		oldest = ""
		for id, entry := range s.sessions {
			if entry.owner == owner && (oldest == "" || entry.lastUsed.Before(s.sessions[oldest].lastUsed)) {
				oldest = id
			}
		}
	}
}

func view(session *playback.Session, frame playback.Frame) PlaybackView {
	return PlaybackView{SessionID: session.ID, RoutineID: session.RoutineID, Frame: frame}
}
