package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alcyxob/routine-builder/internal/calendar"
	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/storage"

	"github.com/rs/zerolog/log"
)

var (
	ErrPublishingDisabled = errors.New("object storage is not configured")
	ErrUnknownExportKind  = errors.New("unknown export kind")
)

// ExportKind names a file that can be downloaded or published.
type ExportKind string

const (
	ExportCalendar ExportKind = "calendar" // scheduled instances
	ExportSchedule ExportKind = "schedule" // routine-level schedules
	ExportBackup   ExportKind = "backup"
)

const (
	scheduleFileName  = "routine_schedules.ics"
	backupContentType = "application/json"
)

// ExportFile is a rendered export ready to be served or uploaded.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// PublishedFile describes an uploaded export.
type PublishedFile struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService renders calendar feeds and backups, restores backups and
// publishes exports to object storage.
type ExportService interface {
	CalendarFeed(ctx context.Context, owner string) (string, error)
	ScheduleFeed(ctx context.Context, owner string) (string, error)
	Backup(ctx context.Context, owner string) (domain.Backup, error)
	Restore(ctx context.Context, owner string, data []byte) error
	Clear(ctx context.Context, owner string) error
	Render(ctx context.Context, owner string, kind ExportKind) (ExportFile, error)
	Publish(ctx context.Context, owner string, kind ExportKind) (PublishedFile, error)
}

// ExportOptions carries the configurable parts of the exports.
type ExportOptions struct {
	Calendar   calendar.Options
	LinkExpiry time.Duration
	Now        func() time.Time
}

type exportService struct {
	workspaces WorkspaceService
	objects    storage.ObjectStore // nil when publishing is disabled
	opts       ExportOptions
}

// NewExportService creates the export service. objects may be nil.
func NewExportService(workspaces WorkspaceService, objects storage.ObjectStore, opts ExportOptions) ExportService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LinkExpiry <= 0 {
		opts.LinkExpiry = storage.DefaultLinkExpiry
	}
	return &exportService{workspaces: workspaces, objects: objects, opts: opts}
}

func (s *exportService) calendarOptions() calendar.Options {
	o := s.opts.Calendar
	o.Now = s.opts.Now()
	return o
}

// CalendarFeed renders every scheduled instance. Instances of deleted
// routines are left out of the document but kept in the workspace.
func (s *exportService) CalendarFeed(ctx context.Context, owner string) (string, error) {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return "", err
	}
	return calendar.Feed(ws.Instances(), ws, s.calendarOptions())
}

// ScheduleFeed renders one recurring event per routine with a schedule,
// starting today.
func (s *exportService) ScheduleFeed(ctx context.Context, owner string) (string, error) {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return "", err
	}
	opts := s.calendarOptions()
	return calendar.ScheduleFeed(ws.Routines(), opts.Now, opts)
}

func (s *exportService) Backup(ctx context.Context, owner string) (domain.Backup, error) {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return domain.Backup{}, err
	}
	return ws.Export(s.opts.Now()), nil
}

// Restore replaces all four collections with the backup in data. Nothing
// changes when data is malformed.
func (s *exportService) Restore(ctx context.Context, owner string, data []byte) error {
	backup, err := domain.ParseBackup(data)
	if err != nil {
		return err
	}
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return err
	}
	if err := ws.Import(backup); err != nil {
		return err
	}
	log.Info().Str("owner", owner).Msg("workspace restored from backup")
	return nil
}

func (s *exportService) Clear(ctx context.Context, owner string) error {
	ws, err := s.workspaces.Open(ctx, owner)
	if err != nil {
		return err
	}
	ws.Clear()
	log.Info().Str("owner", owner).Msg("workspace cleared")
	return nil
}

// Render produces the named export as a file.
func (s *exportService) Render(ctx context.Context, owner string, kind ExportKind) (ExportFile, error) {
	switch kind {
	case ExportCalendar:
		feed, err := s.CalendarFeed(ctx, owner)
		if err != nil {
			return ExportFile{}, err
		}
		return ExportFile{Name: calendar.FileName, ContentType: calendar.ContentType, Body: []byte(feed)}, nil
	case ExportSchedule:
		feed, err := s.ScheduleFeed(ctx, owner)
		if err != nil {
			return ExportFile{}, err
		}
		return ExportFile{Name: scheduleFileName, ContentType: calendar.ContentType, Body: []byte(feed)}, nil
	case ExportBackup:
		backup, err := s.Backup(ctx, owner)
		if err != nil {
			return ExportFile{}, err
		}
		body, err := json.MarshalIndent(backup, "", "  ")
		if err != nil {
			return ExportFile{}, fmt.Errorf("encoding backup: %w", err)
		}
		name := domain.BackupFileName(s.opts.Now())
		return ExportFile{Name: name, ContentType: backupContentType, Body: body}, nil
	default:
		return ExportFile{}, fmt.Errorf("%w: %q", ErrUnknownExportKind, kind)
	}
}

// Publish uploads the export and returns a temporary download link.
func (s *exportService) Publish(ctx context.Context, owner string, kind ExportKind) (PublishedFile, error) {
	if s.objects == nil {
		return PublishedFile{}, ErrPublishingDisabled
	}
	file, err := s.Render(ctx, owner, kind)
	if err != nil {
		return PublishedFile{}, err
	}
	key, err := storage.ExportKey(owner, file.Name)
	if err != nil {
		return PublishedFile{}, err
	}

	if err := s.objects.PutObject(ctx, key, file.ContentType, bytes.NewReader(file.Body)); err != nil {
		return PublishedFile{}, fmt.Errorf("uploading %s: %w", key, err)
	}
	url, err := s.objects.GeneratePresignedDownloadURL(ctx, key, s.opts.LinkExpiry)
	if err != nil {
		return PublishedFile{}, fmt.Errorf("presigning %s: %w", key, err)
	}

	log.Info().Str("owner", owner).Str("key", key).Msg("export published")
	return PublishedFile{Key: key, URL: url, ExpiresAt: s.opts.Now().Add(s.opts.LinkExpiry)}, nil
}
