package scaffold

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/bidsmeta/bidsmeta/internal/branding"
	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

//go:embed templates/descriptions.yaml.tmpl
var descriptionsTemplate string

// ErrOutputExists is returned when the output file exists and overwrite was
// not requested.
var ErrOutputExists = errors.New("output file already exists")

// Task is one task id with the union of its event files' header columns.
type Task struct {
	ID      string
	Columns []string
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	Path     string
	Tasks    []Task
	Warnings []string
}

type templateData struct {
	CLIName string
	Tasks   []Task
}

var tmpl = template.Must(template.New("descriptions").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	Parse(descriptionsTemplate))

// CollectTasks groups records by task id in discovery order and reads the
// header row of every event file. Files with an empty header add a warning.
func CollectTasks(fsys billy.Filesystem, records []dataset.FileRecord) ([]Task, []string, error) {
	var tasks []Task
	var warnings []string
	index := make(map[string]int)

	for _, rec := range records {
		id := rec.TaskID()
		i, ok := index[id]
		if !ok {
			i = len(tasks)
			index[id] = i
			tasks = append(tasks, Task{ID: id})
		}

		header, err := readHeader(fsys, rec.Path())
		if err != nil {
			return nil, nil, err
		}
		if len(header) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s has no header row", rec.Path()))
			continue
		}
		for _, col := range header {
			if !slices.Contains(tasks[i].Columns, col) {
				tasks[i].Columns = append(tasks[i].Columns, col)
			}
		}
	}
	return tasks, warnings, nil
}

// readHeader returns the tab-separated fields of the first line of path.
func readHeader(fsys billy.Filesystem, path string) ([]string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	line = strings.TrimRight(line, "\r\n")

	var fields []string
	for _, field := range strings.Split(line, "\t") {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

// Render returns the descriptions file for tasks.
func Render(tasks []Task) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{CLIName: branding.CLIName(), Tasks: tasks}); err != nil {
		return nil, fmt.Errorf("executing descriptions template: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate writes a descriptions file at out listing every task and header
// column of records. An existing out is left alone unless overwrite is set.
func Generate(fsys billy.Filesystem, records []dataset.FileRecord, out string, overwrite bool) (*Result, error) {
	if !overwrite {
		if _, err := fsys.Stat(out); err == nil {
			return nil, fmt.Errorf("%s: %w; pass --overwrite to replace it", out, ErrOutputExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", out, err)
		}
	}

	tasks, warnings, err := CollectTasks(fsys, records)
	if err != nil {
		return nil, err
	}

	data, err := Render(tasks)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: out, Tasks: tasks, Warnings: warnings}

	// The output must load as a tables file.
	valResult, err := descriptions.Validate(data, descriptions.FormatYAML)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not validate %s: %v", out, err))
	} else if !valResult.Valid {
		for _, issue := range valResult.Issues {
			result.Warnings = append(result.Warnings, issue.String())
		}
	}

	if err := util.WriteFile(fsys, out, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", out, err)
	}
	return result, nil
}
