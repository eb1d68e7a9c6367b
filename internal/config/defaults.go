package config

import "runtime"

// Defaults for the "project-info" fields. An empty string counts as unset.
const (
	DefaultProjectName    = "unknown_project"
	DefaultProjectSource  = "main.py"
	DefaultProjectVersion = "1.0"
)

// DefaultPython returns the base interpreter used to create environments
// when neither the environment nor the tool config names one.
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// applyDefaults fills unset project-info fields in place.
func applyDefaults(p *ProjectConfig) {
	if p.Info.Name == "" {
		p.Info.Name = DefaultProjectName
	}
	if p.Info.Source == "" {
		p.Info.Source = DefaultProjectSource
	}
	if p.Info.Version == "" {
		p.Info.Version = DefaultProjectVersion
	}
}

// PythonFor returns the base interpreter for the given environment.
func (t *ToolConfig) PythonFor(v VenvConfig) string {
	if v.Python != "" {
		return v.Python
	}
	if t != nil && t.Python != "" {
		return t.Python
	}
	return DefaultPython()
}
