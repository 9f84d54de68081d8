package scaffold

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const root = "/dataset"

// disk serves absolute paths on the OS filesystem.
var disk = osfs.New("/")

func newDataset(t *testing.T, files map[string]string) (billy.Filesystem, []dataset.FileRecord) {
	t.Helper()
	fsys := memfs.New()
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for path, content := range files {
		if err := util.WriteFile(fsys, root+path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	scan, err := dataset.Scan(fsys, root, dataset.Options{})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	return fsys, scan.Records
}

func TestCollectTasks(t *testing.T) {
	fsys, records := newDataset(t, map[string]string{
		"/sub-01/ses-01/beh/sub-01_ses-01_run-01_task-prp_events.tsv":    "onset\tduration\trt\n1\t2\t3\n",
		"/sub-02/ses-01/beh/sub-02_ses-01_run-01_task-prp_events.tsv":    "onset\tduration\trt\tresponse\r\n",
		"/sub-01/ses-01/beh/sub-01_ses-01_run-01_task-stroop_events.tsv": "onset\tduration\tcongruent",
	})

	tasks, warnings, err := CollectTasks(fsys, records)
	if err != nil {
		t.Fatalf("CollectTasks() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	want := []Task{
		{ID: "prp", Columns: []string{"onset", "duration", "rt", "response"}},
		{ID: "stroop", Columns: []string{"onset", "duration", "congruent"}},
	}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d: %+v", len(tasks), len(want), tasks)
	}
	for i := range want {
		if tasks[i].ID != want[i].ID || !slices.Equal(tasks[i].Columns, want[i].Columns) {
			t.Errorf("task[%d] = %+v, want %+v", i, tasks[i], want[i])
		}
	}
}

func TestCollectTasksEmptyHeader(t *testing.T) {
	fsys, records := newDataset(t, map[string]string{
		"/sub-01/beh/sub-01_ses-01_run-01_task-prp_events.tsv": "",
	})

	tasks, warnings, err := CollectTasks(fsys, records)
	if err != nil {
		t.Fatalf("CollectTasks() error: %v", err)
	}
	if len(tasks) != 1 || len(tasks[0].Columns) != 0 {
		t.Errorf("tasks = %+v, want one task without columns", tasks)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one", warnings)
	}
}

func TestGenerate(t *testing.T) {
	fsys, records := newDataset(t, map[string]string{
		"/sub-01/ses-01/beh/sub-01_ses-01_run-01_task-prp_events.tsv": "onset\tduration\trt\n",
	})
	out := root + "/descriptions.yaml"

	result, err := Generate(fsys, records, out, false)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	content := readGenerated(t, fsys, out)
	assertContains(t, content, "tasks:\n  \"prp\": \"\"\n")
	assertContains(t, content, "    \"rt\":\n      Description: \"\"\n")

	tables, err := descriptions.Parse([]byte(content), descriptions.FormatYAML)
	if err != nil {
		t.Fatalf("generated file does not parse: %v", err)
	}
	if _, ok := tables.Tasks["prp"]; !ok {
		t.Errorf("tasks = %v, want prp", tables.Tasks)
	}
	cols := tables.Columns["prp"]
	if cols == nil {
		t.Fatal("columns for prp missing")
	}
	if got := cols.Names(); !slices.Equal(got, []string{"onset", "duration", "rt"}) {
		t.Errorf("columns = %v", got)
	}
}

func TestGenerateEmptyDataset(t *testing.T) {
	fsys, records := newDataset(t, nil)
	out := root + "/descriptions.yaml"

	result, err := Generate(fsys, records, out, false)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Tasks) != 0 || len(result.Warnings) != 0 {
		t.Errorf("result = %+v, want no tasks and no warnings", result)
	}

	tables, err := descriptions.Parse([]byte(readGenerated(t, fsys, out)), descriptions.FormatYAML)
	if err != nil {
		t.Fatalf("generated file does not parse: %v", err)
	}
	if len(tables.Tasks) != 0 || len(tables.Columns) != 0 {
		t.Errorf("tables = %+v, want empty", tables)
	}
}

func TestGenerateQuotesOddNames(t *testing.T) {
	fsys, records := newDataset(t, map[string]string{
		"/sub-01/beh/sub-01_ses-01_run-01_task-go: no-go_events.tsv": "onset\tkey: pressed\t# trials\n",
	})
	out := root + "/descriptions.yaml"

	if _, err := Generate(fsys, records, out, false); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	tables, err := descriptions.Parse([]byte(readGenerated(t, fsys, out)), descriptions.FormatYAML)
	if err != nil {
		t.Fatalf("generated file does not parse: %v", err)
	}
	if got := tables.Columns["go: no"].Names(); !slices.Equal(got, []string{"onset", "key: pressed", "# trials"}) {
		t.Errorf("columns = %v", got)
	}
}

func TestGenerateRefusesExisting(t *testing.T) {
	fsys, records := newDataset(t, map[string]string{
		"/sub-01/beh/sub-01_ses-01_run-01_task-prp_events.tsv": "onset\n",
	})
	out := root + "/descriptions.yaml"
	if err := util.WriteFile(fsys, out, []byte("keep me\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Generate(fsys, records, out, false)
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("Generate() error = %v, want ErrOutputExists", err)
	}
	if got := readGenerated(t, fsys, out); got != "keep me\n" {
		t.Errorf("existing file changed: %q", got)
	}

	if _, err := Generate(fsys, records, out, true); err != nil {
		t.Fatalf("Generate() with overwrite error: %v", err)
	}
	assertContains(t, readGenerated(t, fsys, out), "\"prp\"")
}

func TestGenerateLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "sub-01", "ses-01", "beh", "sub-01_ses-01_run-01_task-prp_events.tsv")
	if err := util.WriteFile(disk, events, []byte("onset\tduration\tchoice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	scan, err := dataset.Scan(disk, dir, dataset.Options{})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	out := filepath.Join(dir, "descriptions.yaml")
	if _, err := Generate(disk, scan.Records, out, false); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := descriptions.Load(out); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func readGenerated(t *testing.T, fsys billy.Filesystem, path string) string {
	t.Helper()
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("content does not contain %q\n--- content ---\n%s", substr, content)
	}
}
