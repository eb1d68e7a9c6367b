package ui

import (
	"fmt"
	"io"

	"github.com/uberrun/uber/internal/config"
)

// Reporter prints user-facing lines. INFO, WARNING and error lines honor the
// tool config's ignore flags; progress lines are always printed.
//
// Suppression only affects what is printed. Callers decide control flow on
// their own and must not consult the Reporter for it.
type Reporter struct {
	out    io.Writer
	styles Styles
	ignore config.IgnoreConfig
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, styles Styles, ignore config.IgnoreConfig) *Reporter {
	return &Reporter{out: out, styles: styles, ignore: ignore}
}

// Styles returns the styles the reporter renders with.
func (r *Reporter) Styles() Styles {
	return r.styles
}

// Writer returns the underlying writer.
func (r *Reporter) Writer() io.Writer {
	return r.out
}

// Progressf prints an unstyled progress line.
func (r *Reporter) Progressf(format string, args ...any) {
	fmt.Fprintln(r.out, fmt.Sprintf(format, args...))
}

// Successf prints a progress line in the success style.
func (r *Reporter) Successf(format string, args ...any) {
	fmt.Fprintln(r.out, r.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Infof prints "INFO: ..." unless ignore.info is set.
func (r *Reporter) Infof(format string, args ...any) {
	if r.ignore.Info {
		return
	}
	fmt.Fprintln(r.out, r.styles.Info.Render("INFO: "+fmt.Sprintf(format, args...)))
}

// Warnf prints "WARNING: ..." unless ignore.warnings is set.
func (r *Reporter) Warnf(format string, args ...any) {
	if r.ignore.Warnings {
		return
	}
	fmt.Fprintln(r.out, r.styles.Warning.Render("WARNING: "+fmt.Sprintf(format, args...)))
}

// Errorf prints "Error [code]: ..." unless ignore.errors is set.
func (r *Reporter) Errorf(code int, format string, args ...any) {
	if r.ignore.Errors {
		return
	}
	r.Diagnostic(code, fmt.Sprintf(format, args...))
}

// Diagnostic prints an error line regardless of the ignore flags. Used for
// configuration load failures, which are reported before the flags are known
// to be trustworthy.
func (r *Reporter) Diagnostic(code int, msg string) {
	fmt.Fprintln(r.out, r.styles.Error.Render(fmt.Sprintf("Error [%d]: %s", code, msg)))
}
