package metadata

import (
	"io"
	"log/slog"

	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/go-git/go-billy/v5"
)

// GenerateOptions configures a full Generate run.
type GenerateOptions struct {
	DataType           string
	Extensions         []string
	Overwrite          bool
	ParticipantColumns []string
	Description        DescriptionOptions
	Logger             *slog.Logger
}

// GenerateResult reports a Generate run.
type GenerateResult struct {
	Result
	Records   []dataset.FileRecord
	Malformed []*dataset.MalformedFilenameError
}

// Generate scans root and writes, in order: event sidecars, participants.tsv,
// participants.json, dataset_description.json and README.md. The first error
// stops the run; files written before it stay on disk and are listed in the
// returned result, which is non-nil whenever scanning succeeded.
func Generate(fsys billy.Filesystem, root string, tables *descriptions.Tables, opts GenerateOptions) (*GenerateResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if tables == nil {
		tables = &descriptions.Tables{}
	}

	// Reject a bad version before touching the dataset.
	desc, err := NewDatasetDescription(opts.Description)
	if err != nil {
		return nil, err
	}

	scan, err := dataset.Scan(fsys, root, dataset.Options{
		DataType:   opts.DataType,
		Extensions: opts.Extensions,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("scanned dataset", "root", root, "events", len(scan.Records), "malformed", len(scan.Malformed))

	e := NewEmitter(fsys, root, Options{Overwrite: opts.Overwrite, Logger: logger})
	out := &GenerateResult{Records: scan.Records, Malformed: scan.Malformed}
	finish := func(err error) (*GenerateResult, error) {
		out.Result = *e.Result()
		return out, err
	}

	if _, err := e.EmitSidecars(scan.Records, tables.Tasks, tables.Columns); err != nil {
		return finish(err)
	}

	table := BuildParticipantsTable(scan.Records, opts.ParticipantColumns...)
	if err := e.PersistParticipants(table); err != nil {
		return finish(err)
	}
	if err := e.EmitParticipantsJSON(table); err != nil {
		return finish(err)
	}
	if err := e.EmitDatasetDescription(desc); err != nil {
		return finish(err)
	}
	if err := e.EmitReadme(); err != nil {
		return finish(err)
	}

	logger.Info("done", "written", len(e.result.Written), "skipped", len(e.result.Skipped))
	return finish(nil)
}
