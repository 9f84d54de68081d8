package metadata

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
)

// Participants table columns.
const (
	ColumnParticipantID = "participant_id"
	ColumnAge           = "age"
	ColumnSex           = "sex"
)

// MissingValue is how participants.tsv spells an unset cell.
const MissingValue = "n/a"

// Cell is one participants.tsv value. The zero Cell is missing.
type Cell struct {
	Value string
	Valid bool
}

// String renders the cell for TSV output.
func (c Cell) String() string {
	if !c.Valid {
		return MissingValue
	}
	return c.Value
}

// ParticipantsTable is the in-memory participants.tsv.
type ParticipantsTable struct {
	Columns []string
	Rows    [][]Cell
}

// BuildParticipantsTable returns one row per distinct subject, sorted by
// participant id, with age, sex and any extra columns left missing.
func BuildParticipantsTable(records []dataset.FileRecord, extraColumns ...string) *ParticipantsTable {
	columns := []string{ColumnParticipantID, ColumnAge, ColumnSex}
	for _, col := range extraColumns {
		col = strings.TrimSpace(col)
		if col == "" || slices.Contains(columns, col) {
			continue
		}
		columns = append(columns, col)
	}

	seen := make(map[string]bool)
	var subjects []string
	for _, rec := range records {
		if !seen[rec.Subject] {
			seen[rec.Subject] = true
			subjects = append(subjects, rec.Subject)
		}
	}
	sort.Strings(subjects)

	table := &ParticipantsTable{Columns: columns}
	for _, sub := range subjects {
		row := make([]Cell, len(columns))
		row[0] = Cell{Value: sub, Valid: true}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Len returns the number of participants.
func (t *ParticipantsTable) Len() int {
	return len(t.Rows)
}

// ParticipantIDs returns the participant_id column.
func (t *ParticipantsTable) ParticipantIDs() []string {
	ids := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		ids = append(ids, row[0].Value)
	}
	return ids
}

// MarshalTSV renders the table as tab-separated text with a header row.
func (t *ParticipantsTable) MarshalTSV() []byte {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, "\t"))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		fields := make([]string, len(row))
		for i, cell := range row {
			fields[i] = cell.String()
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// PersistParticipants writes participants.tsv at the dataset root.
func (e *Emitter) PersistParticipants(table *ParticipantsTable) error {
	e.logger.Info("creating participants table", "participants", table.Len())
	return e.writeFile(e.rootPath(ParticipantsTSVFile), table.MarshalTSV())
}

// ParticipantsDescriptor describes every column of table. Columns other than
// age and sex get an empty placeholder; their names are returned in
// undocumented.
func ParticipantsDescriptor(table *ParticipantsTable) (doc *Document, undocumented []string) {
	doc = NewDocument()
	for _, col := range table.Columns {
		entry := NewDocument()
		switch col {
		case ColumnAge:
			entry.Set("Description", "Age of the participant")
			entry.Set("Units", "years")
		case ColumnSex:
			entry.Set("Description", "Sex of the participant as reported by the participant")
			entry.Set("Levels", descriptions.Levels{{Value: "m", Meaning: "male"}, {Value: "f", Meaning: "female"}})
		default:
			entry.Set("Description", "")
			entry.Set("Levels", descriptions.Levels{})
			entry.Set("Units", "")
			undocumented = append(undocumented, col)
		}
		doc.Set(col, entry)
	}
	return doc, undocumented
}

// EmitParticipantsJSON writes participants.json for the columns of table and
// warns about every column that needs a manual description.
func (e *Emitter) EmitParticipantsJSON(table *ParticipantsTable) error {
	path := e.rootPath(ParticipantsJSONFile)
	doc, undocumented := ParticipantsDescriptor(table)
	for _, col := range undocumented {
		e.warn(fmt.Sprintf("column %s in %s has no built-in description, describe it in %s", col, ParticipantsTSVFile, path))
	}
	return e.writeJSON(path, doc)
}
