package cli

import (
	"fmt"
	"path/filepath"

	"github.com/bidsmeta/bidsmeta/internal/branding"
	"github.com/bidsmeta/bidsmeta/internal/config"
	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/bidsmeta/bidsmeta/internal/descriptions"
	"github.com/bidsmeta/bidsmeta/internal/scaffold"
	"github.com/spf13/cobra"
)

// defaultDescriptionsFile is written under the dataset root by init.
const defaultDescriptionsFile = "descriptions.yaml"

var (
	descInitOutput    string
	descInitOverwrite bool
)

func init() {
	addScanFlags(descriptionsInitCmd)
	descriptionsInitCmd.Flags().StringVarP(&descInitOutput, "output", "o", "", "Output file (default <bids_root>/"+defaultDescriptionsFile+")")
	descriptionsInitCmd.Flags().BoolVar(&descInitOverwrite, "overwrite", false, "Replace an existing output file")
	descriptionsCmd.AddCommand(descriptionsInitCmd)
	descriptionsCmd.AddCommand(descriptionsCheckCmd)
	rootCmd.AddCommand(descriptionsCmd)
}

var descriptionsCmd = &cobra.Command{
	Use:   "descriptions",
	Short: "Manage task and column description tables",
	Long: `Description tables map every task id to a task description and every
column of its event files to BIDS column metadata (Description, LongName,
Levels, Units, TermURL, HED). They can be written in YAML, JSON or TOML.`,
}

var descriptionsInitCmd = &cobra.Command{
	Use:   "init [bids_root]",
	Short: "Scaffold a descriptions file from a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, scanBindings...); err != nil {
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

		scan, err := dataset.Scan(hostFS, root, dataset.Options{
			DataType:   settings.DataType,
			Extensions: settings.Extensions,
			Logger:     newLogger(cmd.ErrOrStderr(), settings.Verbose && !quiet),
		})
		if err != nil {
			return err
		}

		out := descInitOutput
		if out == "" {
			out = filepath.Join(root, defaultDescriptionsFile)
		}
		if out, err = filepath.Abs(out); err != nil {
			return fmt.Errorf("resolving output path: %w", err)
		}

		result, err := scaffold.Generate(hostFS, scan.Records, out, descInitOverwrite)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		st := newStyles(w)
		fmt.Fprintf(w, "%s %s\n", st.ok.Render("Wrote"), result.Path)
		for _, task := range result.Tasks {
			fmt.Fprintf(w, "  %s %s\n", task.ID, st.muted.Render(plural(len(task.Columns), "column", "columns")))
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s %s\n", st.warn.Render("warning:"), warning)
		}
		fmt.Fprintf(w, "\nFill in the descriptions, then run '%s generate %s -d %s'.\n", branding.CLIName(), root, result.Path)
		return nil
	},
}

var descriptionsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a descriptions file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		w := cmd.OutOrStdout()
		st := newStyles(w)

		valResult, err := descriptions.ValidateFile(path)
		if err != nil {
			return err
		}
		if !valResult.Valid {
			fmt.Fprintf(w, "%s %s\n", st.err.Render("Invalid:"), path)
			for _, issue := range valResult.Issues {
				fmt.Fprintf(w, "  %s\n", issue)
			}
			return fmt.Errorf("%s has %s", path, plural(len(valResult.Issues), "schema issue", "schema issues"))
		}

		tables, err := descriptions.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s (%s)\n", st.ok.Render("Valid:"), path, plural(len(tables.TaskIDs()), "task", "tasks"))
		for _, msg := range tables.Unpaired() {
			fmt.Fprintf(w, "  %s %s\n", st.warn.Render("warning:"), msg)
		}
		return nil
	},
}
