package dataset

import (
	"path/filepath"
	"strings"
)

// FileRecord is one discovered event file.
type FileRecord struct {
	Dir     string // directory containing the file, as seen by the filesystem
	Name    string // e.g., "sub-01_ses-01_run-01_task-prp_events.tsv"
	Ext     string // matched extension, e.g., ".tsv"
	Subject string // e.g., "sub-01"
	Session string // e.g., "ses-01"
	Run     string // e.g., "run-01"
	Task    string // e.g., "task-prp"
}

// Path returns the full path of the event file.
func (r FileRecord) Path() string {
	return filepath.Join(r.Dir, r.Name)
}

// TaskID returns the bare task identifier with the "task-" key removed.
// It returns "" when the task entity has no value.
func (r FileRecord) TaskID() string {
	return entityValue(r.Task)
}

// SidecarName returns the file name of the JSON sidecar for this record.
func (r FileRecord) SidecarName() string {
	return strings.TrimSuffix(r.Name, r.Ext) + ".json"
}

// SidecarPath returns the full path of the JSON sidecar for this record.
func (r FileRecord) SidecarPath() string {
	return filepath.Join(r.Dir, r.SidecarName())
}

// entityValue splits a "key-value" entity and returns the value part.
func entityValue(entity string) string {
	parts := strings.Split(entity, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
