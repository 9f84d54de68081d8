package metadata

import (
	"encoding/json"
	"testing"

	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

const root = "/study"

// newDataset builds an in-memory dataset holding the given event files.
func newDataset(t *testing.T, paths ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	for _, p := range paths {
		require.NoError(t, util.WriteFile(fsys, p, []byte("onset\tduration\n"), 0o644))
	}
	return fsys
}

func readFile(t *testing.T, fsys billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fsys, path)
	require.NoError(t, err, path)
	return string(data)
}

func readJSON(t *testing.T, fsys billy.Filesystem, path string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, fsys, path)), &out), path)
	return out
}

func fileExists(fsys billy.Filesystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// prpTables mirrors the minimal tables used in the end-to-end scenario.
func prpTables() *descriptions.Tables {
	cols := descriptions.NewColumns()
	cols.Set("col", descriptions.Column{Description: "x"})
	return &descriptions.Tables{
		Tasks:   descriptions.TaskDescriptions{"prp": "desc"},
		Columns: descriptions.ColumnDescriptions{"prp": cols},
	}
}

func writeString(fsys billy.Filesystem, path, content string) error {
	return util.WriteFile(fsys, path, []byte(content), 0o644)
}
