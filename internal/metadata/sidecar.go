package metadata

import (
	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
)

// taskKey is the sidecar key that carries the task description.
const taskKey = "task"

// SidecarDocument merges a task description and its column descriptions into
// one sidecar: "task" first, then every column in declaration order. A column
// named "task" replaces the description in place.
func SidecarDocument(taskDescription string, columns *descriptions.Columns) *Document {
	doc := NewDocument()
	doc.Set(taskKey, taskDescription)
	for _, name := range columns.Names() {
		col, _ := columns.Get(name)
		doc.Set(name, col)
	}
	return doc
}

// EmitSidecars writes a JSON sidecar next to every event file. All records are
// checked against both tables before anything is written; a task missing from
// either table aborts the whole batch with a *MissingDescriptionError.
// The records are returned unchanged.
func (e *Emitter) EmitSidecars(records []dataset.FileRecord, tasks descriptions.TaskDescriptions, columns descriptions.ColumnDescriptions) ([]dataset.FileRecord, error) {
	for _, rec := range records {
		if err := checkDescribed(rec, tasks, columns); err != nil {
			return records, err
		}
	}

	for _, rec := range records {
		id := rec.TaskID()
		doc := SidecarDocument(tasks[id], columns[id])
		if err := e.writeJSON(rec.SidecarPath(), doc); err != nil {
			return records, err
		}
	}
	return records, nil
}

func checkDescribed(rec dataset.FileRecord, tasks descriptions.TaskDescriptions, columns descriptions.ColumnDescriptions) error {
	id := rec.TaskID()
	if _, ok := tasks[id]; !ok {
		return &MissingDescriptionError{Task: id, Table: "task descriptions", File: rec.Path()}
	}
	if _, ok := columns[id]; !ok {
		return &MissingDescriptionError{Task: id, Table: "column descriptions", File: rec.Path()}
	}
	return nil
}
