package descriptions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlTables = `tasks:
  prp: "Dual task: visual target detection then pitch discrimination"
  auditory: Pitch discrimination practice
columns:
  prp:
    sub_id:
      LongName: Participant ID
      Description: Subject identifier
    is_practice:
      LongName: Is practice
      Description: Task is practice or actual experiment
      Levels:
        0: Not practice
        1: Practice
    RT_aud:
      LongName: Auditory reaction time
      Description: Reaction time to the tone
      Units: s
  auditory: {}
`

const jsonTables = `{
	"tasks": {
		"prp": "Dual task: visual target detection then pitch discrimination",
		"auditory": "Pitch discrimination practice"
	},
	"columns": {
		"prp": {
			"sub_id": {"LongName": "Participant ID", "Description": "Subject identifier"},
			"is_practice": {
				"LongName": "Is practice",
				"Description": "Task is practice or actual experiment",
				"Levels": {"0": "Not practice", "1": "Practice"}
			},
			"RT_aud": {"LongName": "Auditory reaction time", "Description": "Reaction time to the tone", "Units": "s"}
		},
		"auditory": {}
	}
}`

const tomlTables = `[tasks]
prp = "Dual task: visual target detection then pitch discrimination"
auditory = "Pitch discrimination practice"

[columns.auditory]

[columns.prp.sub_id]
LongName = "Participant ID"
Description = "Subject identifier"

[columns.prp.is_practice]
LongName = "Is practice"
Description = "Task is practice or actual experiment"

[columns.prp.is_practice.Levels]
"0" = "Not practice"
"1" = "Practice"

[columns.prp.RT_aud]
LongName = "Auditory reaction time"
Description = "Reaction time to the tone"
Units = "s"
`

func writeTables(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantOrder []string
	}{
		{"yaml", "tables.yaml", yamlTables, []string{"sub_id", "is_practice", "RT_aud"}},
		{"json", "tables.json", jsonTables, []string{"sub_id", "is_practice", "RT_aud"}},
		{"toml", "tables.toml", tomlTables, []string{"RT_aud", "is_practice", "sub_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := Load(writeTables(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "Pitch discrimination practice", tables.Tasks["auditory"])
			assert.Contains(t, tables.Tasks["prp"], "Dual task")

			prp := tables.Columns["prp"]
			require.NotNil(t, prp)
			assert.Equal(t, tt.wantOrder, prp.Names())

			practice, ok := prp.Get("is_practice")
			require.True(t, ok)
			assert.Equal(t, "Is practice", practice.LongName)
			assert.Equal(t, Levels{{"0", "Not practice"}, {"1", "Practice"}}, practice.Levels)

			rt, ok := prp.Get("RT_aud")
			require.True(t, ok)
			assert.Equal(t, "s", rt.Units)

			require.Contains(t, tables.Columns, "auditory")
			assert.Equal(t, 0, tables.Columns["auditory"].Len())
		})
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{
			name:     "missing columns",
			content:  "tasks:\n  prp: text\n",
			wantPath: "",
		},
		{
			name:     "unknown column key",
			content:  "tasks:\n  prp: text\ncolumns:\n  prp:\n    rt:\n      Unit: s\n",
			wantPath: "/columns/prp/rt",
		},
		{
			name:     "non-string description",
			content:  "tasks:\n  prp: [a, b]\ncolumns:\n  prp: {}\n",
			wantPath: "/tasks/prp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTables(t, "tables.yaml", tt.content))
			require.Error(t, err)

			var invalid *InvalidError
			require.True(t, errors.As(err, &invalid), "got %T: %v", err, err)
			require.NotEmpty(t, invalid.Issues)
			assert.Contains(t, invalid.Error(), "tables.yaml")

			var paths []string
			for _, issue := range invalid.Issues {
				paths = append(paths, issue.Path)
			}
			assert.Contains(t, paths, tt.wantPath)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeTables(t, "tables.txt", yamlTables))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"tasks": `), FormatJSON)
	require.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yaml", FormatYAML},
		{"a.YML", FormatYAML},
		{"dir/a.json", FormatJSON},
		{"a.toml", FormatTOML},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestParseJSONEscapes(t *testing.T) {
	data := []byte(`{
	"tasks": {"prp": "Stimuli in a\/b blocks, café \"quoted\""},
	"columns": {"prp": {"rt": {"Description": "Reaction time", "Units": "s"}}}
}`)

	tables, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, `Stimuli in a/b blocks, café "quoted"`, tables.Tasks["prp"])
	rt, ok := tables.Columns["prp"].Get("rt")
	require.True(t, ok)
	assert.Equal(t, "s", rt.Units)
}

func TestParseJSONDuplicateKeysLastWins(t *testing.T) {
	data := []byte(`{
	"tasks": {"prp": "first", "prp": "second"},
	"columns": {"prp": {
		"rt": {"Description": "old"},
		"choice": {"Description": "Button"},
		"rt": {"Description": "new"}
	}}
}`)

	tables, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "second", tables.Tasks["prp"])
	cols := tables.Columns["prp"]
	assert.Equal(t, []string{"rt", "choice"}, cols.Names())
	rt, _ := cols.Get("rt")
	assert.Equal(t, "new", rt.Description)
}

func TestParseJSONScalarsKeepTheirType(t *testing.T) {
	// Numbers and booleans reach the schema as such and are rejected.
	for _, doc := range []string{
		`{"tasks": {"prp": 3}, "columns": {}}`,
		`{"tasks": {"prp": true}, "columns": {}}`,
		`{"tasks": {"prp": null}, "columns": {}}`,
	} {
		_, err := Parse([]byte(doc), FormatJSON)
		var invalid *InvalidError
		assert.ErrorAs(t, err, &invalid, doc)
	}
}

func TestParseJSONTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"tasks": {}, "columns": {}} {}`), FormatJSON)
	require.Error(t, err)
}
