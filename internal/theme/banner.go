package theme

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"twexport/internal/errs"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Banner returns the startup banner.
func Banner() string {
	return panelStyle.Render(titleStyle.Render("twexport") + "\n" + mutedStyle.Render("tweet activity export"))
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Println(Banner())
}

// Done reports the written artifact.
func Done(w io.Writer, kind, path string, rows int) {
	fmt.Fprintf(w, "%s %s (%d rows)\n", okStyle.Render(kind+" ready:"), path, rows)
}

// Fail reports a fatal error on stderr.
func Fail(err error) { failTo(os.Stderr, err) }

// failTo prefixes typed errors with their code and appends the correlation id
// so a report can be matched to its log line.
func failTo(w io.Writer, err error) {
	var te *errs.Error
	if !errors.As(err, &te) {
		fmt.Fprintln(w, errStyle.Render("error:"), err)
		return
	}
	fmt.Fprintln(w, errStyle.Render("error "+te.Code+":"), err, mutedStyle.Render("(correlation id "+te.CorrelationID+")"))
}
