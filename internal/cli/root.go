package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/launch"
	"github.com/uberrun/uber/internal/logging"
	"github.com/uberrun/uber/internal/pipeline"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagDryRun  bool
	flagNoColor bool
)

// skipConfigAnnotation marks commands that run without loading either
// configuration file.
const skipConfigAnnotation = "uber/skip-config"

// newRunner builds the process runner used by run and status. Tests replace
// it with a process.Recorder.
var newRunner = func() process.Runner { return process.ExecRunner{} }

// rootCmd is the base command for uber.
var rootCmd = &cobra.Command{
	Use:   "uberrun",
	Short: "Bootstrap and run Python projects in their own environments",
	Long: `uberrun reads a per-project "uber" file, creates the virtual environments it
declares, installs the listed dependencies into them and runs the project's
entry point with the interpreter of the main environment.

A global "uber-config" file next to the binary controls which INFO, WARNING
and error lines are printed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	// Both configs are loaded before help is shown, so a broken file is
	// reported even on a bare invocation.
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			_ = cmd.Help()
			return &usageError{err: fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())}
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("UBER_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("UBER_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("UBER_NO_COLOR") != "") {
			flagNoColor = true
		}
		if !cmd.Flags().Changed("dir") && flagDir == "" {
			flagDir = os.Getenv("UBER_DIR")
		}

		jsonFormat := os.Getenv("UBER_LOG_FORMAT") == "json"
		logging.Setup(flagVerbose, flagQuiet, jsonFormat)

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if skipsConfig(cmd) {
			return nil
		}
		s, err := loadSession(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		current = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: UBER_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all log output except errors (env: UBER_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the uber-config file (env: UBER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Directory containing the project's uber file (env: UBER_DIR; default: the executable's directory)")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Print planned commands without executing them")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: UBER_NO_COLOR, NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// skipsConfig reports whether cmd or one of its parents opted out of config
// loading.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

// session is what PersistentPreRunE loaded for the running command.
type session struct {
	Dir      string
	Tool     *config.ToolConfig
	Reporter *ui.Reporter

	// Project is nil when the project file could not be loaded; ProjectErr
	// then holds the reason, already reported to the user.
	Project    *config.ProjectConfig
	ProjectErr error
}

var current *session

// loadSession loads the tool config and the project config, printing a
// diagnostic for each one that fails. A missing or broken tool config
// degrades to the zero value.
func loadSession(out io.Writer) (*session, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, err
	}
	toolPath := flagConfig
	if toolPath == "" {
		toolPath, err = config.ToolConfigPath()
		if err != nil {
			return nil, err
		}
	}

	styles := ui.DefaultStyles()
	diag := ui.NewReporter(out, styles, config.IgnoreConfig{})
	logger := logging.New("cli")

	tool, err := config.LoadToolConfig(toolPath)
	if err != nil {
		if reportErr := reportLoadError(diag, err); reportErr != nil {
			return nil, reportErr
		}
		tool = &config.ToolConfig{}
	}

	s := &session{
		Dir:      dir,
		Tool:     tool,
		Reporter: ui.NewReporter(out, styles, tool.Ignore),
	}

	s.Project, s.ProjectErr = config.LoadProjectConfig(dir)
	if s.ProjectErr != nil {
		if reportErr := reportLoadError(diag, s.ProjectErr); reportErr != nil {
			return nil, reportErr
		}
	}

	logger.Debug("session loaded", "dir", dir, "tool_config", toolPath, "project", s.Project != nil)
	return s, nil
}

// reportLoadError prints a *config.LoadError as a numbered diagnostic. Any
// other error is returned unchanged.
func reportLoadError(r *ui.Reporter, err error) error {
	var le *config.LoadError
	if !errors.As(err, &le) {
		return err
	}
	r.Diagnostic(le.Code, le.Error())
	return nil
}

// projectDir resolves --dir, falling back to the executable's directory.
func projectDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	return config.ExecutableDir()
}

// usageError is returned for an unknown command or a bad flag.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitError ends the process with code after its message was already shown.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err, rootCmd.ErrOrStderr())
}

// exitCode maps a command error to the process exit code, printing it when
// nothing has reported it yet.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var launchErr *launch.ExitError
	if errors.As(err, &launchErr) {
		return launchErr.Code
	}
	if errors.Is(err, pipeline.ErrAborted) {
		return 1
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	fmt.Fprintln(stderr, "Error:", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. It
// carries the same persistent flags as the global rootCmd, bound to local
// variables, and shares its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) output (env: UBER_VERBOSE)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all log output except errors (env: UBER_QUIET)")
	cmd.PersistentFlags().String("config", "", "Path to the uber-config file (env: UBER_CONFIG)")
	cmd.PersistentFlags().String("dir", "", "Directory containing the project's uber file (env: UBER_DIR; default: the executable's directory)")
	cmd.PersistentFlags().Bool("dry-run", false, "Print planned commands without executing them")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (env: UBER_NO_COLOR, NO_COLOR)")

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
