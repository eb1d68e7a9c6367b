// Command gen-completions writes uberrun's shell completion scripts for bash,
// zsh, fish and powershell into an output directory, ready to be packaged
// with a release.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/cli"
)

type shell struct {
	file string
	gen  func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{file: "uberrun.bash", gen: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
	{file: "_uberrun", gen: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) }},
	{file: "uberrun.fish", gen: func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) }},
	{file: "uberrun.ps1", gen: func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) }},
}

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	if err := generate(cli.NewRootCmd(), outDir); err != nil {
		fmt.Fprintln(os.Stderr, "gen-completions:", err)
		os.Exit(1)
	}
	fmt.Printf("All completions written to %s/\n", outDir)
}

func generate(root *cobra.Command, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}

	for _, sh := range shells {
		path := filepath.Join(outDir, sh.file)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %q: %w", path, err)
		}
		if err := sh.gen(root, f); err != nil {
			f.Close()
			return fmt.Errorf("generating %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %q: %w", path, err)
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}
