package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bidsmeta/bidsmeta/internal/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// styles used for command summaries. All of them are plain when the output
// is not a terminal.
type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{title: plain, ok: plain, warn: plain, err: plain, muted: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newLogger logs progress at Info when verbose, errors only otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if !verbose {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// flagBinding ties a config key to a command flag.
type flagBinding struct {
	key  string
	flag string
}

// bindFlags lets the flags of cmd override config for this run.
func bindFlags(cmd *cobra.Command, bindings ...flagBinding) error {
	for _, b := range bindings {
		if err := config.BindFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return err
		}
	}
	return nil
}

// addScanFlags registers the flags that select event files.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-type", "", "Directory marker of the modality (default beh)")
	cmd.Flags().StringSlice("ext", nil, "Allowed event file extension (repeatable, default .tsv)")
}

var scanBindings = []flagBinding{
	{config.KeyDataType, "data-type"},
	{config.KeyFileExtension, "ext"},
}

// count formats n with English digit grouping.
func count(n int) string {
	return printer.Sprintf("%d", n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", count(n), one)
	}
	return fmt.Sprintf("%s %s", count(n), many)
}
