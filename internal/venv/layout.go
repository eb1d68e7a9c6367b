// Package venv materialises the Python virtual environments a project
// declares.
package venv

import (
	"os"
	"path/filepath"
	"runtime"
)

// Layout locates the executables inside one environment directory.
type Layout struct {
	// Root is the environment directory.
	Root string
	// Windows selects the Scripts/*.exe layout instead of bin/.
	Windows bool
}

// LayoutFor returns the layout of the environment called name inside the
// project directory, for the host operating system.
func LayoutFor(projectDir, name string) Layout {
	return Layout{
		Root:    filepath.Join(projectDir, name),
		Windows: runtime.GOOS == "windows",
	}
}

// BinDir is the directory activation would put first on PATH.
func (l Layout) BinDir() string {
	if l.Windows {
		return filepath.Join(l.Root, "Scripts")
	}
	return filepath.Join(l.Root, "bin")
}

// Python is the environment's interpreter.
func (l Layout) Python() string {
	return filepath.Join(l.BinDir(), l.exe("python"))
}

// Pip is the environment's package manager.
func (l Layout) Pip() string {
	return filepath.Join(l.BinDir(), l.exe("pip"))
}

func (l Layout) exe(name string) string {
	if l.Windows {
		return name + ".exe"
	}
	return name
}

// Exists reports whether the environment has been created, judged by the
// presence of its interpreter.
func (l Layout) Exists() bool {
	_, err := os.Stat(l.Python())
	return err == nil
}
