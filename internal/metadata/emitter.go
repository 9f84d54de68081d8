package metadata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Output file names at the dataset root.
const (
	ParticipantsTSVFile    = "participants.tsv"
	ParticipantsJSONFile   = "participants.json"
	DatasetDescriptionFile = "dataset_description.json"
	ReadmeFile             = "README.md"
)

const filePerm os.FileMode = 0o644

// Options configures an Emitter.
type Options struct {
	// Overwrite replaces existing files instead of skipping them.
	Overwrite bool
	// Logger receives progress at Info and skip notices at Warn. Nil discards.
	Logger *slog.Logger
}

// Result collects what an Emitter did.
type Result struct {
	Written  []string // paths written, in order
	Skipped  []string // paths left untouched because they already existed
	Warnings []string // skip notices and columns that need manual documentation
}

// Emitter writes metadata files under a dataset root.
type Emitter struct {
	fsys      billy.Filesystem
	root      string
	overwrite bool
	logger    *slog.Logger
	result    Result
}

// NewEmitter creates an Emitter that writes under root on fsys.
func NewEmitter(fsys billy.Filesystem, root string, opts Options) *Emitter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Emitter{
		fsys:      fsys,
		root:      root,
		overwrite: opts.Overwrite,
		logger:    logger,
	}
}

// Result returns a copy of everything recorded so far.
func (e *Emitter) Result() *Result {
	r := Result{
		Written:  append([]string(nil), e.result.Written...),
		Skipped:  append([]string(nil), e.result.Skipped...),
		Warnings: append([]string(nil), e.result.Warnings...),
	}
	return &r
}

// rootPath joins name onto the dataset root.
func (e *Emitter) rootPath(name string) string {
	return filepath.Join(e.root, name)
}

// writeFile applies the write policy: an existing file is skipped with a
// warning unless overwrite is set; otherwise data replaces the file.
func (e *Emitter) writeFile(path string, data []byte) error {
	exists, err := e.exists(path)
	if err != nil {
		return err
	}
	if exists && !e.overwrite {
		e.result.Skipped = append(e.result.Skipped, path)
		e.warn(fmt.Sprintf("the file %s already exists, set overwrite to replace it", path))
		return nil
	}

	e.logger.Info("saving", "path", path)
	if err := util.WriteFile(e.fsys, path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.result.Written = append(e.result.Written, path)
	return nil
}

func (e *Emitter) writeJSON(path string, v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return e.writeFile(path, data)
}

func (e *Emitter) exists(path string) (bool, error) {
	_, err := e.fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", path, err)
}

func (e *Emitter) warn(msg string) {
	e.logger.Warn(msg)
	e.result.Warnings = append(e.result.Warnings, msg)
}
