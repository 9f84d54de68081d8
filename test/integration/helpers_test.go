//go:build integration

package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // HOME, holds .bidsmeta/config.yaml
	DatasetDir string // BIDS dataset root
	WorkDir    string // descriptions files live here, outside the dataset
}

// setupTestEnv creates isolated temp directories so no run reads the real
// user configuration.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		DatasetDir: t.TempDir(),
		WorkDir:    t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	return env
}

// setupDataset writes a two-subject, two-session PRP study plus a stroop run
// for the first subject. Returns the event file paths.
func setupDataset(t *testing.T, root string) []string {
	t.Helper()

	var paths []string
	for _, sub := range []string{"sub-01", "sub-02"} {
		for _, ses := range []string{"ses-01", "ses-02"} {
			name := sub + "_" + ses + "_run-01_task-prp_events.tsv"
			path := filepath.Join(root, sub, ses, "beh", name)
			writeFile(t, path, "onset\tduration\trt\tchoice\n0.5\t1.0\t0.43\t1\n")
			paths = append(paths, path)
		}
	}
	stroop := filepath.Join(root, "sub-01", "ses-01", "beh", "sub-01_ses-01_run-02_task-stroop_events.tsv")
	writeFile(t, stroop, "onset\tduration\tcongruent\n")
	paths = append(paths, stroop)

	// Not under a beh directory, never selected.
	writeFile(t, filepath.Join(root, "sub-01", "ses-01", "func", "sub-01_ses-01_run-01_task-prp_events.tsv"), "onset\n")
	return paths
}

const yamlDescriptions = `tasks:
  prp: Psychological refractory period
  stroop: Colour-word Stroop
columns:
  prp:
    rt:
      Description: Response time
      Units: s
    choice:
      Description: Button pressed
      Levels:
        1: left
        2: right
  stroop:
    congruent:
      Description: Word and ink colour match
`

const tomlDescriptions = `[tasks]
prp = "Psychological refractory period"
stroop = "Colour-word Stroop"

[columns.prp.rt]
Description = "Response time"
Units = "s"

[columns.prp.choice]
Description = "Button pressed"
Levels = { "1" = "left", "2" = "right" }

[columns.stroop.congruent]
Description = "Word and ink colour match"
`

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func readJSONFile(t *testing.T, path string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(readFile(t, path)), &out); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return out
}

func sidecarPath(eventPath string) string {
	return strings.TrimSuffix(eventPath, ".tsv") + ".json"
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
