package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bidsmeta/bidsmeta/internal/branding"
	"github.com/bidsmeta/bidsmeta/internal/config"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/bidsmeta/bidsmeta/internal/metadata"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

// hostFS serves the absolute paths produced by resolveRoot.
var hostFS = osfs.New("/")

var generateCmd = &cobra.Command{
	Use:   "generate [bids_root]",
	Short: "Write BIDS metadata files for a dataset",
	Long: `Scan a BIDS dataset for behavioral event files and write, in order:
a JSON sidecar next to every event file, participants.tsv, participants.json,
dataset_description.json and README.md.

Existing files are left untouched unless --overwrite is given. Task and column
descriptions are read from the file given with --descriptions (YAML, JSON or
TOML); run "descriptions init" to scaffold one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	addScanFlags(generateCmd)
	f := generateCmd.Flags()
	f.StringP("descriptions", "d", "", "Task and column descriptions file")
	f.Bool("overwrite", false, "Replace existing metadata files")
	f.StringSlice("participant-column", nil, "Extra participants.tsv column (repeatable)")
	f.String("bids-version", "", "BIDSVersion for dataset_description.json (default 1.9.0)")
	f.String("name", "", "Dataset name for dataset_description.json")
	f.String("license", "", "License for dataset_description.json")
	f.StringSlice("author", nil, "Author for dataset_description.json (repeatable)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	bindings := append([]flagBinding{
		{config.KeyDescriptions, "descriptions"},
		{config.KeyOverwrite, "overwrite"},
		{config.KeyParticipantColumns, "participant-column"},
		{config.KeyBIDSVersion, "bids-version"},
		{config.KeyDatasetName, "name"},
		{config.KeyDatasetLicense, "license"},
		{config.KeyDatasetAuthors, "author"},
	}, scanBindings...)
	if err := bindFlags(cmd, bindings...); err != nil {
		return err
	}

	settings, err := config.Current()
	if err != nil {
		return err
	}
	root, err := resolveRoot(args, settings)
	if err != nil {
		return err
	}

	tables := &descriptions.Tables{}
	if settings.Descriptions != "" {
		tables, err = descriptions.Load(settings.Descriptions)
		if err != nil {
			return err
		}
	}

	result, err := metadata.Generate(hostFS, root, tables, metadata.GenerateOptions{
		DataType:           settings.DataType,
		Extensions:         settings.Extensions,
		Overwrite:          settings.Overwrite,
		ParticipantColumns: settings.ParticipantColumns,
		Description:        settings.DescriptionOptions(),
		Logger:             newLogger(cmd.ErrOrStderr(), settings.Verbose && !quiet),
	})
	if result != nil {
		printGenerateSummary(cmd.OutOrStdout(), root, result)
	}
	if errors.Is(err, metadata.ErrMissingDescription) {
		return fmt.Errorf("%w\nAdd the task to the descriptions file (see '%s descriptions init')", err, branding.CLIName())
	}
	return err
}

// resolveRoot returns the absolute dataset root. The positional argument
// wins over the bids_root setting.
func resolveRoot(args []string, settings *config.Settings) (string, error) {
	root := settings.BIDSRoot
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return "", fmt.Errorf("no dataset root: pass bids_root or set %s", config.KeyBIDSRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}
	return abs, nil
}

func printGenerateSummary(w io.Writer, root string, result *metadata.GenerateResult) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render(root))
	fmt.Fprintf(w, "  %s\n", plural(len(result.Records), "event file", "event files"))
	if n := len(result.Malformed); n > 0 {
		fmt.Fprintf(w, "  %s\n", st.warn.Render(plural(n, "malformed file name skipped", "malformed file names skipped")))
		for _, m := range result.Malformed {
			fmt.Fprintf(w, "    %s\n", st.muted.Render(m.Path))
		}
	}
	fmt.Fprintf(w, "  %s\n", st.ok.Render(plural(len(result.Written), "file written", "files written")))
	if n := len(result.Skipped); n > 0 {
		fmt.Fprintf(w, "  %s\n", st.warn.Render(plural(n, "file skipped, already exists (use --overwrite)", "files skipped, already exist (use --overwrite)")))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s %s\n", st.warn.Render("warning:"), warning)
	}
}
