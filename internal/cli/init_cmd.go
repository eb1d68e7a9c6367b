package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/ui"
)

// errInitCancelled is returned when the prompt is aborted with Ctrl+C.
var errInitCancelled = errors.New("init cancelled by user")

const initFormWidth = 72

type initFlags struct {
	Name    string
	Source  string
	Venv    string
	Force   bool
	NoInput bool
}

// initAnswers are the values written to the starter file.
type initAnswers struct {
	Name   string
	Source string
	Venv   string
}

// starterFile is the JSON shape of a freshly initialised project file.
type starterFile struct {
	Info         config.ProjectInfo         `json:"project-info"`
	Venvs        map[string]starterVenv     `json:"venv-configs"`
	Dependencies map[string]json.RawMessage `json:"dependencies"`
}

type starterVenv struct {
	Main bool `json:"main"`
}

// isTerminal reports whether prompts can be shown. Tests replace it.
var isTerminal = func(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// isExecutable reports whether a path is the running binary. Tests replace it.
var isExecutable = config.IsExecutable

// promptInit asks for the starter values. Tests replace it.
var promptInit = func(a *initAnswers) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&a.Name),
			huh.NewInput().
				Title("Entry point").
				Description("Path of the script to run, relative to the project directory.").
				Value(&a.Source),
			huh.NewInput().
				Title("Main environment").
				Description("Directory name of the virtual environment that runs the project.").
				Validate(validateVenvName).
				Value(&a.Venv),
		),
	).
		WithTheme(huh.ThemeCharm()).
		WithWidth(initFormWidth).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errInitCancelled
	}
	return err
}

func newInitCmd() *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter uber file",
		Long: `Write a starter "uber" project file into the project directory with one
main environment and no dependencies.

When stdin is a terminal the values are asked for interactively; flags
pre-fill the answers. Use --no-input to write the file from flags and
defaults alone.`,
		Example: `  uberrun init --dir ./myproject
  uberrun init --name demo --source app.py --venv .venv --no-input`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Name, "name", "n", "", "Project name (default: the directory name)")
	cmd.Flags().StringVar(&flags.Source, "source", config.DefaultProjectSource, "Entry point script")
	cmd.Flags().StringVar(&flags.Venv, "venv", "venv", "Name of the main environment")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite an existing uber file")
	cmd.Flags().BoolVar(&flags.NoInput, "no-input", false, "Never prompt")

	return cmd
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func runInit(cmd *cobra.Command, flags initFlags) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", dir, err)
	}

	target := filepath.Join(dir, config.ProjectConfigFileName)
	if isExecutable(target) {
		return fmt.Errorf("%s is this program's executable; use --dir to choose the project directory", target)
	}
	if _, statErr := os.Stat(target); statErr == nil && !flags.Force {
		return fmt.Errorf("%s already exists; use --force to overwrite", target)
	}

	answers := initAnswers{Name: flags.Name, Source: flags.Source, Venv: flags.Venv}
	if answers.Name == "" {
		answers.Name = filepath.Base(dir)
	}

	if !flags.NoInput && isTerminal(os.Stdin) {
		if err := promptInit(&answers); err != nil {
			return err
		}
	}

	data, err := renderStarter(answers)
	if err != nil {
		return err
	}

	if flagDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "[dry-run] write %s\n%s", target, data)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	styles := ui.DefaultStyles()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("Wrote %s", target)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Add dependencies to %s\n", target)
	fmt.Fprintf(out, "  2. Run: uberrun --dir %s run\n", dir)
	return nil
}

// renderStarter encodes answers as a project file and checks that it loads.
func renderStarter(a initAnswers) ([]byte, error) {
	if err := validateVenvName(a.Venv); err != nil {
		return nil, err
	}

	file := starterFile{
		Info: config.ProjectInfo{
			Name:    a.Name,
			Source:  a.Source,
			Version: config.DefaultProjectVersion,
		},
		Venvs:        map[string]starterVenv{a.Venv: {Main: true}},
		Dependencies: map[string]json.RawMessage{},
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project file: %w", err)
	}
	data = append(data, '\n')

	if _, err := config.ParseProjectJSON(data); err != nil {
		return nil, fmt.Errorf("generated project file is invalid: %w", err)
	}
	return data, nil
}

func validateVenvName(name string) error {
	if name == config.ReservedVenvName {
		return fmt.Errorf("%q is never created automatically; choose another name", name)
	}
	return config.CheckVenvName(name)
}
