package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/venv"
)

// configCmd is the parent "config" namespace command. It has no action of its
// own.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration inspection commands",
	Long:  "Inspect and validate the project's uber file and the tool's uber-config.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configShowCmd implements "uberrun config show".
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the loaded configuration with defaults applied",
	Long: `Display both configuration files as uber understands them: defaults
filled in, environments and dependencies in declared order, and the resolved
location of every environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printConfig(cmd.OutOrStdout(), current)
		return nil
	},
}

// configValidateCmd implements "uberrun config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project configuration and report issues",
	Long: `Check the project's uber file for problems that do not stop it from
loading but change what run does. Exits non-zero when the file cannot be
loaded or has errors. Warnings honor ignore.warnings in uber-config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.Project == nil {
			return &exitError{code: 1, msg: "project configuration could not be loaded"}
		}
		result := config.Validate(current.Project)
		printValidationResult(cmd.OutOrStdout(), result, current.Tool.Ignore.Warnings)
		if result.HasErrors() {
			return &exitError{code: 1, msg: fmt.Sprintf("configuration has %d error(s)", len(result.Errors()))}
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleSection = lipgloss.NewStyle().Bold(true)
)

const fieldWidth = 22

func printConfig(out io.Writer, s *session) {
	styles := s.Reporter.Styles()
	printHeader(out, "Configuration")

	fmt.Fprintln(out, styleSection.Render("[uber-config]"))
	printField(out, "ignore.warnings", fmt.Sprint(s.Tool.Ignore.Warnings))
	printField(out, "ignore.errors", fmt.Sprint(s.Tool.Ignore.Errors))
	printField(out, "ignore.info", fmt.Sprint(s.Tool.Ignore.Info))
	printField(out, "python", fmt.Sprintf("%q", s.Tool.PythonFor(config.VenvConfig{})))
	fmt.Fprintln(out)

	p := s.Project
	if p == nil {
		fmt.Fprintln(out, styles.Muted.Render("Project file: not loaded"))
		return
	}

	fmt.Fprintf(out, "Project file: %s\n", p.Path)
	fmt.Fprintf(out, "Fingerprint:  %s\n", config.Fingerprint(p))
	fmt.Fprintln(out)

	fmt.Fprintln(out, styleSection.Render("[project-info]"))
	printField(out, "project-name", fmt.Sprintf("%q", p.Info.Name))
	printField(out, "project-source", fmt.Sprintf("%q", p.Info.Source))
	printField(out, "version", fmt.Sprintf("%q", p.Info.Version))
	fmt.Fprintln(out)

	main, hasMain := p.MainVenv()
	for _, v := range p.Venvs {
		fmt.Fprintln(out, styleSection.Render(fmt.Sprintf("[venv-configs.%s]", v.Name)))
		printField(out, "main", fmt.Sprint(v.Main))
		printField(out, "python", fmt.Sprintf("%q", s.Tool.PythonFor(v)))
		printField(out, "system-site-packages", fmt.Sprint(v.SystemSitePackages))
		printField(out, "path", venv.LayoutFor(p.Dir, v.Name).Root)
		var notes []string
		if hasMain && v.Name == main.Name {
			notes = append(notes, "runs the project")
		}
		if v.Reserved() {
			notes = append(notes, "never created automatically")
		}
		if len(notes) > 0 {
			fmt.Fprintln(out, styles.Muted.Render("  # "+strings.Join(notes, "; ")))
		}
		fmt.Fprintln(out)
	}

	for _, d := range p.Dependencies {
		fmt.Fprintln(out, styleSection.Render(fmt.Sprintf("[dependencies.%s]", d.Package)))
		printField(out, "venv", fmt.Sprintf("%q", d.Venv))
		printField(out, "version", fmt.Sprintf("%q", d.Version))
		printField(out, "requirement", d.Requirement())
		fmt.Fprintln(out)
	}
}

func printHeader(out io.Writer, title string) {
	fmt.Fprintln(out, styleHeader.Render(title))
	fmt.Fprintln(out, strings.Repeat("=", len(title)))
	fmt.Fprintln(out)
}

func printField(out io.Writer, name, value string) {
	fmt.Fprintf(out, "  %-*s = %s\n", fieldWidth, name, value)
}

// printValidationResult writes the validation report. Warnings are left out
// when hideWarnings is set, but still counted.
func printValidationResult(out io.Writer, result *config.ValidationResult, hideWarnings bool) {
	styles := current.Reporter.Styles()
	printHeader(out, "Configuration Validation")

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styles.Success.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styles.Error.Bold(true).Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 && !hideWarnings {
		fmt.Fprintln(out, styles.Warning.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
