package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alcyxob/routine-builder/internal/calendar"
	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/persist"
	"alcyxob/routine-builder/internal/repository/file"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	svc    Services
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	workspaces := service.NewWorkspaceService(store, []persist.Option{persist.WithDelay(time.Hour)})
	svc := Services{
		Auth:       service.NewAuthService(secret, time.Hour),
		Workspaces: workspaces,
		Playback:   service.NewPlaybackService(workspaces),
		Exports: service.NewExportService(workspaces, nil, service.ExportOptions{
			Calendar: calendar.Options{StartTime: calendar.DefaultStartTime},
			Now:      func() time.Time { return time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC) },
		}),
	}

	router := gin.New()
	SetupRoutes(router, RouterConfig{DefaultOwner: "local"}, svc)
	return &testServer{router: router, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPing(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, testSecret)
	token, err := s.svc.Auth.IssueToken("alice")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"ownerId":"alice","tokenAuth":true}`, w.Body.String())
			}
		})
	}
}

func TestDefaultOwnerWithoutTokenAuth(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodGet, "/api/v1/me", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ownerId":"local","tokenAuth":false}`, w.Body.String())
}

func TestExerciseEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/exercises", map[string]any{
		"title":      "Bird dog",
		"categories": []string{"Deep Stabilizers"},
		"videoUrl":   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"rating":     4,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ExerciseResponse](t, w)
	assert.Equal(t, "Bird dog", created.Title)
	assert.True(t, strings.HasPrefix(created.EmbedURL, "https://www.youtube.com/embed/dQw4w9WgXcQ"))

	w = s.do(t, http.MethodPost, "/api/v1/exercises", map[string]any{"description": "no title"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/exercises", map[string]any{"title": "Too good", "rating": 9}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/exercises?search=bird", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]ExerciseResponse](t, w), 1)

	path := fmt.Sprintf("/api/v1/exercises/%d", created.ID)
	w = s.do(t, http.MethodPatch, path, map[string]any{"rating": 5}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[ExerciseResponse](t, w).Rating)

	w = s.do(t, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/exercises/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/tags", CreateTagRequest{Name: "mobility", Color: "bg-blue-500"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "names are unique ignoring case")

	w = s.do(t, http.MethodPost, "/api/v1/tags", CreateTagRequest{Name: "Balance", Color: "bg-chartreuse"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/tags", CreateTagRequest{Name: "Balance", Color: "bg-teal-500"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]workspace.TagUsage](t, w)
	assert.Len(t, tags, len(domain.DefaultTags())+1)

	w = s.do(t, http.MethodDelete, "/api/v1/tags/Balance", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/tags/Balance", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutineEditingFlow(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/routines", CreateRoutineRequest{Name: "Morning"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[domain.Routine](t, w)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/routines/%d/sections", routine.ID), CreateSectionRequest{Name: "Warm-up"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	section := decode[domain.Section](t, w)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/routines/%d/items/new", routine.ID), NewItemRequest{Title: "Plank"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	plank := decode[ExerciseResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/drops", map[string]any{
		"payload": map[string]any{
			"type":       "exercise",
			"source":     map[string]any{"routineId": routine.ID},
			"index":      0,
			"exerciseId": plank.ID,
		},
		"target": map[string]any{
			"type":      "container",
			"container": map[string]any{"routineId": routine.ID, "sectionId": section.ID},
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	drop := decode[workspace.DropResult](t, w)
	assert.True(t, drop.Moved)
	assert.False(t, drop.StaleSource)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/routines/%d", routine.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[RoutineSummary](t, w)
	assert.Empty(t, got.Items)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, []int64{plank.ID}, domain.RefIDs(got.Sections[0].Items))
	assert.Equal(t, 1, got.ExerciseCount)

	toggle := ToggleItemRequest{SectionID: section.ID, ExerciseID: plank.ID}
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/routines/%d/items/toggle", routine.ID), toggle, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":false`)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/routines/%d", routine.ID), map[string]any{"name": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/moves", map[string]any{
		"source": map[string]any{"routineId": routine.ID, "sectionId": 999},
		"from":   0,
		"target": map[string]any{"routineId": routine.ID},
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDropRoutineOnDateAndExport(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/routines", CreateRoutineRequest{Name: "Evening, slow"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[domain.Routine](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/drops", map[string]any{
		"payload": map[string]any{"type": "routine", "routineId": routine.ID},
		"target":  map[string]any{"type": "date", "date": "2025-03-07"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	drop := decode[workspace.DropResult](t, w)
	require.NotNil(t, drop.Instance)
	assert.Equal(t, 15, drop.Instance.DurationMinutes)

	w = s.do(t, http.MethodGet, "/api/v1/calendar/instances?from=2025-03-01&to=2025-03-31", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	instances := decode[[]InstanceResponse](t, w)
	require.Len(t, instances, 1)
	assert.Equal(t, "Evening, slow", instances[0].RoutineName)

	w = s.do(t, http.MethodGet, "/api/v1/calendar/export.ics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, calendar.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="routine_schedule.ics"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "SUMMARY:Evening\\, slow\r\n")
	assert.Contains(t, w.Body.String(), "DTSTART:20250307T090000\r\n")

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/routines/%d", routine.ID), nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/calendar/instances", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	instances = decode[[]InstanceResponse](t, w)
	require.Len(t, instances, 1, "placements outlive their routine")
	assert.True(t, instances[0].Missing)

	w = s.do(t, http.MethodGet, "/api/v1/calendar/export.ics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "BEGIN:VEVENT")
}

func TestPlaybackEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/routines", CreateRoutineRequest{Name: "Quick"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	routine := decode[domain.Routine](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/playback", StartPlaybackRequest{RoutineID: routine.ID}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/routines/%d/items/new", routine.ID), NewItemRequest{Title: "Squat"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/playback", StartPlaybackRequest{RoutineID: routine.ID}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[service.PlaybackView](t, w)
	assert.True(t, view.Last)
	assert.Equal(t, "complete", view.Action)

	w = s.do(t, http.MethodPost, "/api/v1/playback/"+view.SessionID+"/next", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[service.PlaybackView](t, w).Position)

	w = s.do(t, http.MethodDelete, "/api/v1/playback/"+view.SessionID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/playback/"+view.SessionID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDataEndpoints(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(t, http.MethodPost, "/api/v1/routines", CreateRoutineRequest{Name: "Keep"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/data/import", `{"routines": []}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/routines", nil, "")
	assert.Len(t, decode[[]RoutineSummary](t, w), 1, "malformed import leaves state alone")

	w = s.do(t, http.MethodGet, "/api/v1/data/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="routine_backup_2025-03-03.json"`, w.Header().Get("Content-Disposition"))
	backup := w.Body.String()

	w = s.do(t, http.MethodDelete, "/api/v1/data", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/routines", nil, "")
	assert.Empty(t, decode[[]RoutineSummary](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/data/import", backup, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/v1/routines", nil, "")
	routines := decode[[]RoutineSummary](t, w)
	require.Len(t, routines, 1)
	assert.Equal(t, "Keep", routines[0].Name)

	w = s.do(t, http.MethodPost, "/api/v1/exports/calendar/publish", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/status/flush", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[persist.Status](t, w)
	assert.Equal(t, persist.StateSaved, status.State)
	assert.True(t, strings.Contains(w.Body.String(), `"hydrated":true`))
}
