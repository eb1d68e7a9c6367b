package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks a configuration that cannot be run as written.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks a configuration that runs but probably not as intended.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g. "dependencies.requests.venv"
	Message  string
}

// ValidationResult holds all validation findings in the order they were found.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Validate reports problems in a loaded project configuration. The loader
// already rejects unusable environment names; Validate covers what still
// loads but will not behave as the author likely expects. A missing entry
// point is an error; everything else is a warning.
func Validate(cfg *ProjectConfig) *ValidationResult {
	vr := &ValidationResult{}
	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateEntryPoint(vr, cfg)
	validateVenvs(vr, cfg)
	validateDependencies(vr, cfg)
	return vr
}

// validateEntryPoint reports a launch that cannot succeed. Configurations not
// loaded from disk have no Dir and are not checked.
func validateEntryPoint(vr *ValidationResult, cfg *ProjectConfig) {
	if cfg.Dir == "" {
		return
	}
	if _, ok := cfg.MainVenv(); !ok {
		return
	}
	entry := cfg.EntryPoint()
	info, err := os.Stat(entry)
	switch {
	case err != nil:
		addError(vr, "project-info.project-source",
			fmt.Sprintf("entry point %s does not exist; run cannot launch the project", entry))
	case info.IsDir():
		addError(vr, "project-info.project-source",
			fmt.Sprintf("entry point %s is a directory", entry))
	}
}

func validateVenvs(vr *ValidationResult, cfg *ProjectConfig) {
	mains := cfg.MainVenvNames()
	switch {
	case len(cfg.Venvs) == 0:
		addWarning(vr, "venv-configs", "no environments declared; run has nothing to launch")
	case len(mains) == 0:
		addWarning(vr, "venv-configs", "no environment is marked main; run will not launch the project")
	case len(mains) > 1:
		addWarning(vr, "venv-configs",
			fmt.Sprintf("%d environments are marked main (%s); %q is used",
				len(mains), strings.Join(mains, ", "), mains[0]))
	}

	if main, ok := cfg.MainVenv(); ok && main.Reserved() {
		addWarning(vr, "venv-configs."+main.Name+".main",
			fmt.Sprintf("%q is never created automatically; it must exist before run", ReservedVenvName))
	}
}

func validateDependencies(vr *ValidationResult, cfg *ProjectConfig) {
	for _, d := range cfg.Dependencies {
		prefix := "dependencies." + d.Package

		switch {
		case d.Venv == "":
			addWarning(vr, prefix+".venv", "no target environment; dependency is skipped")
		default:
			if _, ok := cfg.Venv(d.Venv); !ok {
				addWarning(vr, prefix+".venv",
					fmt.Sprintf("environment %q is not declared in venv-configs; dependency is skipped", d.Venv))
			}
		}

		if d.Version != "" {
			if _, err := semver.NewVersion(d.Version); err != nil {
				addWarning(vr, prefix+".version",
					fmt.Sprintf("%q does not look like a version number; pip may reject %q", d.Version, d.Requirement()))
			}
		}
	}
}

func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityError, Field: field, Message: message})
}

func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityWarning, Field: field, Message: message})
}
