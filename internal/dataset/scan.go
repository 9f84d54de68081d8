package dataset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Defaults for the scan options.
const (
	DefaultDataType  = "beh"
	DefaultExtension = ".tsv"
)

// eventsMarker must appear in every event filename.
const eventsMarker = "events"

// requiredSegments is the number of leading entities parsed from a filename.
const requiredSegments = 4

// Options controls which files Scan selects.
type Options struct {
	// DataType is matched as a substring of each directory path.
	DataType string
	// Extensions is the set of allowed filename suffixes.
	Extensions []string
	// Logger receives skip warnings. Nil discards them.
	Logger *slog.Logger
}

// ScanResult holds the outcome of a scan.
type ScanResult struct {
	Records   []FileRecord
	Malformed []*MalformedFilenameError
}

// Scan walks root on fsys and returns every event file that matches opts, in
// lexical walk order. Files with fewer than four entities are reported in
// ScanResult.Malformed and skipped. An empty result is not an error.
func Scan(fsys billy.Filesystem, root string, opts Options) (*ScanResult, error) {
	opts = opts.withDefaults()

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading dataset root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", root)
	}

	result := &ScanResult{}
	err = util.Walk(fsys, root, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			return nil
		}

		dir := filepath.Dir(path)
		name := fi.Name()
		ext, ok := opts.match(dir, name)
		if !ok {
			return nil
		}

		rec, err := parseRecord(dir, name, ext)
		var malformed *MalformedFilenameError
		if errors.As(err, &malformed) {
			opts.Logger.Warn("skipping event file", "path", path, "error", err)
			result.Malformed = append(result.Malformed, malformed)
			return nil
		}
		result.Records = append(result.Records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking dataset root %s: %w", root, err)
	}

	return result, nil
}

// NormalizeExtensions trims blanks, adds a leading dot where missing, and
// drops duplicates while keeping order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !seen[ext] {
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out
}

func (o Options) withDefaults() Options {
	if o.DataType == "" {
		o.DataType = DefaultDataType
	}
	o.Extensions = NormalizeExtensions(o.Extensions)
	if len(o.Extensions) == 0 {
		o.Extensions = []string{DefaultExtension}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// match applies the selection predicate and returns the matched extension.
// The longest matching extension wins so ".tsv.gz" beats ".gz".
func (o Options) match(dir, name string) (string, bool) {
	if !strings.Contains(name, eventsMarker) || !strings.Contains(dir, o.DataType) {
		return "", false
	}
	matched := ""
	for _, ext := range o.Extensions {
		if strings.HasSuffix(name, ext) && len(ext) > len(matched) {
			matched = ext
		}
	}
	return matched, matched != ""
}

// parseRecord splits name on "_" and maps the first four segments to the
// subject, session, run, and task entities.
func parseRecord(dir, name, ext string) (FileRecord, error) {
	parts := strings.Split(name, "_")
	if len(parts) < requiredSegments {
		return FileRecord{}, &MalformedFilenameError{
			Path:     filepath.Join(dir, name),
			Segments: len(parts),
		}
	}
	return FileRecord{
		Dir:     dir,
		Name:    name,
		Ext:     ext,
		Subject: parts[0],
		Session: parts[1],
		Run:     parts[2],
		Task:    parts[3],
	}, nil
}
