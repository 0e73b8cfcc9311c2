package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Collection names one of the four independently persisted data sets.
type Collection string

const (
	CollectionExercises Collection = "exercises"
	CollectionRoutines  Collection = "routines"
	CollectionTags      Collection = "categories"
	CollectionScheduled Collection = "scheduledRoutines"
)

// Collections lists every collection in load order.
var Collections = []Collection{CollectionExercises, CollectionRoutines, CollectionTags, CollectionScheduled}

// BackupVersion is written into every exported document.
const BackupVersion = "1.0"

// Backup is the full-state import/export document.
type Backup struct {
	Version           string              `json:"version"`
	Timestamp         time.Time           `json:"timestamp"`
	Exercises         []Exercise          `json:"exercises"`
	Routines          []Routine           `json:"routines"`
	Categories        []Tag               `json:"categories"`
	ScheduledRoutines []ScheduledInstance `json:"scheduledRoutines"`
}

// BackupFileName is the download name for a backup taken at t.
func BackupFileName(t time.Time) string {
	return "routine_backup_" + t.UTC().Format(DateLayout) + ".json"
}

// ParseBackup decodes an import document. The exercises key must be present
// and hold an array before anything else is looked at.
func ParseBackup(data []byte) (*Backup, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, malformedf("invalid JSON: %v", err)
	}
	raw, ok := fields["exercises"]
	if !ok || !isJSONArray(raw) {
		return nil, malformedf("missing exercises array")
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, malformedf("%v", err)
	}
	return &b, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
