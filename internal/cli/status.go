package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/uberrun/uber/internal/config"
	"github.com/uberrun/uber/internal/deps"
	"github.com/uberrun/uber/internal/process"
	"github.com/uberrun/uber/internal/ui"
	"github.com/uberrun/uber/internal/venv"
)

// statusProbeLimit bounds the number of concurrent "pip show" probes.
const statusProbeLimit = 4

// Dependency states reported by status.
const (
	depInstalled = "installed"
	depMissing   = "missing"
	depNoEnv     = "no-environment"
	depSkipped   = "skipped"
)

type venvStatus struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Main     bool   `json:"main"`
	Reserved bool   `json:"reserved"`
	Exists   bool   `json:"exists"`
}

type depStatus struct {
	Package string `json:"package"`
	Venv    string `json:"venv"`
	Version string `json:"version,omitempty"`
	State   string `json:"state"`
}

// statusOutput is the JSON shape of "uberrun status --json".
type statusOutput struct {
	ProjectName  string       `json:"project_name"`
	Dir          string       `json:"dir"`
	Venvs        []venvStatus `json:"venvs"`
	Dependencies []depStatus  `json:"dependencies"`
}

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which environments and dependencies are in place",
		Long: `Report, without changing anything, which declared environments have been
created and which dependencies pip already has. A dependency whose
environment is empty or undeclared is shown as skipped, as run would skip it.`,
		Example: `  uberrun --dir ./myproject status
  uberrun --dir ./myproject status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := current.Project
			if p == nil {
				return nil
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			st, err := collectStatus(ctx, p, newRunner())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			renderStatus(cmd.OutOrStdout(), current.Reporter.Styles(), st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output structured JSON to stdout")
	return cmd
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

// collectStatus inspects every environment and probes every dependency whose
// environment exists. Probes run concurrently; results keep declared order.
func collectStatus(ctx context.Context, p *config.ProjectConfig, runner process.Runner) (*statusOutput, error) {
	st := &statusOutput{
		ProjectName:  p.Info.Name,
		Dir:          p.Dir,
		Venvs:        make([]venvStatus, len(p.Venvs)),
		Dependencies: make([]depStatus, len(p.Dependencies)),
	}

	exists := make(map[string]bool, len(p.Venvs))
	for i, v := range p.Venvs {
		layout := venv.LayoutFor(p.Dir, v.Name)
		exists[v.Name] = layout.Exists()
		st.Venvs[i] = venvStatus{
			Name:     v.Name,
			Path:     layout.Root,
			Main:     v.Main,
			Reserved: v.Reserved(),
			Exists:   exists[v.Name],
		}
	}

	installer := &deps.Installer{Runner: runner}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusProbeLimit)

	for i, d := range p.Dependencies {
		st.Dependencies[i] = depStatus{Package: d.Package, Venv: d.Venv, Version: d.Version}

		envExists, declared := exists[d.Venv]
		switch {
		case d.Venv == "" || !declared:
			st.Dependencies[i].State = depSkipped
			continue
		case !envExists:
			st.Dependencies[i].State = depNoEnv
			continue
		}

		g.Go(func() error {
			present, err := installer.Installed(gctx, p, d)
			if err != nil {
				return fmt.Errorf("probing %s in %s: %w", d.Package, d.Venv, err)
			}
			if present {
				st.Dependencies[i].State = depInstalled
			} else {
				st.Dependencies[i].State = depMissing
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

// renderStatus writes the human-readable report.
//
//	uberrun status - demo
//	=====================
//	Environments:
//	  app      created  (main)
//	  tools    not created
//	Dependencies:
//	  requests==2.31.0  app    installed
func renderStatus(w io.Writer, styles ui.Styles, st *statusOutput) {
	headerStyle := lipgloss.NewStyle().Bold(true)
	title := fmt.Sprintf("uberrun status - %s", st.ProjectName)
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)))

	fmt.Fprintln(w, styles.Label.Render("Environments:"))
	if len(st.Venvs) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("  none declared"))
	}
	nameWidth := 0
	for _, v := range st.Venvs {
		nameWidth = max(nameWidth, len(v.Name))
	}
	for _, v := range st.Venvs {
		state := styles.Success.Render("created")
		if !v.Exists {
			state = styles.Error.Render("not created")
		}
		var notes []string
		if v.Main {
			notes = append(notes, "main")
		}
		if v.Reserved {
			notes = append(notes, "never created automatically")
		}
		line := fmt.Sprintf("  %-*s  %s", nameWidth, v.Name, state)
		if len(notes) > 0 {
			line += "  " + styles.Muted.Render("("+strings.Join(notes, ", ")+")")
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, styles.Label.Render("Dependencies:"))
	if len(st.Dependencies) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("  none declared"))
		return
	}
	reqWidth, venvWidth := 0, 0
	for _, d := range st.Dependencies {
		reqWidth = max(reqWidth, len(requirement(d)))
		venvWidth = max(venvWidth, len(d.Venv))
	}
	for _, d := range st.Dependencies {
		fmt.Fprintf(w, "  %-*s  %-*s  %s\n", reqWidth, requirement(d), venvWidth, d.Venv, depStateStyle(styles, d.State))
	}
}

func requirement(d depStatus) string {
	return config.Dependency{Package: d.Package, Version: d.Version}.Requirement()
}

func depStateStyle(styles ui.Styles, state string) string {
	switch state {
	case depInstalled:
		return styles.Success.Render(state)
	case depMissing:
		return styles.Error.Render(state)
	default:
		return styles.Muted.Render(state)
	}
}
