package config

import "path/filepath"

// ReservedVenvName is the environment name that is never created
// automatically. Projects use it for a test environment managed by hand.
const ReservedVenvName = "test-venv"

// ToolConfig maps to the uber-config file that lives next to the binary.
type ToolConfig struct {
	Ignore IgnoreConfig `json:"ignore"`

	// Python is the base interpreter used to create environments when the
	// environment itself does not name one.
	Python string `json:"python,omitempty"`
}

// IgnoreConfig controls which classes of report lines are suppressed.
// Suppression is presentation only; it never changes control flow.
type IgnoreConfig struct {
	Warnings bool `json:"warnings"`
	Errors   bool `json:"errors"`
	Info     bool `json:"info"`
}

// ProjectConfig maps to the per-project uber file.
//
// Venvs and Dependencies keep the order in which they were declared. Both the
// provisioning loop and the "first main wins" rule depend on it.
type ProjectConfig struct {
	Info         ProjectInfo  `json:"project-info"`
	Venvs        []VenvConfig `json:"venv-configs"`
	Dependencies []Dependency `json:"dependencies"`

	// Dir is the directory the file was loaded from. Environment directories
	// and the entry point are resolved against it.
	Dir string `json:"-"`

	// Path is the file that was loaded.
	Path string `json:"-"`
}

// ProjectInfo maps to the "project-info" object.
type ProjectInfo struct {
	Name    string `json:"project-name" toml:"project-name"`
	Source  string `json:"project-source" toml:"project-source"`
	Version string `json:"version" toml:"version"`
}

// VenvConfig is one entry of "venv-configs". Fields this tool does not know
// about are ignored.
type VenvConfig struct {
	Name string `json:"name" toml:"-"`

	Main bool `json:"main" toml:"main"`

	// Python overrides ToolConfig.Python for this environment.
	Python string `json:"python,omitempty" toml:"python"`

	// SystemSitePackages passes --system-site-packages to venv.
	SystemSitePackages bool `json:"system-site-packages,omitempty" toml:"system-site-packages"`
}

// Reserved reports whether the environment must never be created.
func (v VenvConfig) Reserved() bool {
	return v.Name == ReservedVenvName
}

// Dependency is one entry of "dependencies".
type Dependency struct {
	Package string `json:"package" toml:"-"`
	Venv    string `json:"venv" toml:"venv"`
	Version string `json:"version,omitempty" toml:"version"`
}

// Requirement returns the pip requirement string: "name==version" when a
// version is pinned, otherwise just the name.
func (d Dependency) Requirement() string {
	if d.Version == "" {
		return d.Package
	}
	return d.Package + "==" + d.Version
}

// Venv returns the declared environment with the given name.
func (p *ProjectConfig) Venv(name string) (VenvConfig, bool) {
	for _, v := range p.Venvs {
		if v.Name == name {
			return v, true
		}
	}
	return VenvConfig{}, false
}

// MainVenv returns the first environment flagged main, in declared order.
func (p *ProjectConfig) MainVenv() (VenvConfig, bool) {
	for _, v := range p.Venvs {
		if v.Main {
			return v, true
		}
	}
	return VenvConfig{}, false
}

// EntryPoint returns the script path handed to the interpreter. A relative
// source is anchored to Dir, so a name such as "-c" is never parsed as an
// interpreter option.
func (p *ProjectConfig) EntryPoint() string {
	src := p.Info.Source
	switch {
	case filepath.IsAbs(src):
		return src
	case p.Dir != "":
		return filepath.Join(p.Dir, src)
	default:
		return "." + string(filepath.Separator) + src
	}
}

// MainVenvNames returns the names of every environment flagged main. More
// than one entry means the configuration relies on the first-match rule.
func (p *ProjectConfig) MainVenvNames() []string {
	var names []string
	for _, v := range p.Venvs {
		if v.Main {
			names = append(names, v.Name)
		}
	}
	return names
}
