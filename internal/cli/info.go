package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/config"
)

// infoOutput is the JSON shape of "uberrun info --json".
type infoOutput struct {
	Name        string `json:"project_name"`
	Source      string `json:"project_source"`
	Version     string `json:"version"`
	MainVenv    string `json:"main_venv,omitempty"`
	Dir         string `json:"dir"`
	Fingerprint string `json:"fingerprint"`
}

func newInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Display project information",
		Long: `Print the project's name, entry point and version, and the main
environment when one is declared. Prints nothing when the project file could
not be loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := current.Project
			if p == nil {
				return nil
			}
			if asJSON {
				return printInfoJSON(cmd, p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project Name: %s\n", p.Info.Name)
			fmt.Fprintf(out, "Project Source: %s\n", p.Info.Source)
			fmt.Fprintf(out, "Version: %s\n", p.Info.Version)
			if main, ok := p.MainVenv(); ok {
				fmt.Fprintf(out, "Main Venv: %s\n", main.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output project information as JSON")
	return cmd
}

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func printInfoJSON(cmd *cobra.Command, p *config.ProjectConfig) error {
	out := infoOutput{
		Name:        p.Info.Name,
		Source:      p.Info.Source,
		Version:     p.Info.Version,
		Dir:         p.Dir,
		Fingerprint: config.Fingerprint(p),
	}
	if main, ok := p.MainVenv(); ok {
		out.MainVenv = main.Name
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
