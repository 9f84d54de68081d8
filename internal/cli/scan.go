package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bidsmeta/bidsmeta/internal/config"
	"github.com/bidsmeta/bidsmeta/internal/dataset"
	"github.com/spf13/cobra"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan [bids_root]",
	Short: "List the event files generate would describe",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(scanCmd)
}

// scanEntry represents a discovered event file for display.
type scanEntry struct {
	Subject string `json:"subject"`
	Session string `json:"session"`
	Run     string `json:"run"`
	Task    string `json:"task"`
	Path    string `json:"path"`
	Sidecar string `json:"sidecar"`
}

type scanOutput struct {
	Events    []scanEntry `json:"events"`
	Malformed []string    `json:"malformed"`
}

func runScan(cmd *cobra.Command, args []string) error {
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

	result, err := dataset.Scan(hostFS, root, dataset.Options{
		DataType:   settings.DataType,
		Extensions: settings.Extensions,
		Logger:     newLogger(cmd.ErrOrStderr(), settings.Verbose && !quiet),
	})
	if err != nil {
		return err
	}

	out := newScanOutput(result)
	if scanJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling scan result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printScanTable(cmd.OutOrStdout(), out)
	return nil
}

func newScanOutput(result *dataset.ScanResult) scanOutput {
	out := scanOutput{Events: []scanEntry{}, Malformed: []string{}}
	for _, rec := range result.Records {
		out.Events = append(out.Events, scanEntry{
			Subject: rec.Subject,
			Session: rec.Session,
			Run:     rec.Run,
			Task:    rec.TaskID(),
			Path:    rec.Path(),
			Sidecar: rec.SidecarPath(),
		})
	}
	for _, m := range result.Malformed {
		out.Malformed = append(out.Malformed, m.Path)
	}
	return out
}

func printScanTable(w io.Writer, out scanOutput) {
	if len(out.Events) == 0 {
		fmt.Fprintln(w, "No event files found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBJECT\tSESSION\tRUN\tTASK\tPATH")
		for _, e := range out.Events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Subject, e.Session, e.Run, e.Task, e.Path)
		}
		tw.Flush()
		fmt.Fprintf(w, "\n%s\n", plural(len(out.Events), "event file", "event files"))
	}

	if len(out.Malformed) > 0 {
		st := newStyles(w)
		fmt.Fprintln(w, st.warn.Render(plural(len(out.Malformed), "malformed file name:", "malformed file names:")))
		for _, p := range out.Malformed {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
