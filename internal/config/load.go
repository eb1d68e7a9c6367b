package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File names looked up by the loaders.
const (
	ToolConfigFileName    = "uber-config"
	ProjectConfigFileName = "uber"
	ProjectTOMLFileName   = "uber.toml"
)

const toolConfigEnv = "UBER_CONFIG"

const (
	formatJSON = "JSON"
	formatTOML = "TOML"
)

// Diagnostic codes printed as "Error [N]". Codes 3 to 6 belong to the run
// pipeline.
const (
	CodeToolNotFound    = 1
	CodeToolParse       = 2
	CodeProjectNotFound = 7
	CodeProjectParse    = 8
)

// Sentinel errors matched with errors.Is on a *LoadError.
var (
	ErrNotFound = errors.New("configuration file not found")
	ErrParse    = errors.New("invalid configuration")
)

// LoadError describes why a configuration file could not be loaded.
type LoadError struct {
	// Code is the diagnostic number shown to the user.
	Code int
	// Path is the file that failed to load.
	Path string
	// Kind is ErrNotFound or ErrParse.
	Kind error
	// Format is "JSON" or "TOML".
	Format string
	// Err is the underlying cause, if any.
	Err error
}

func (e *LoadError) Error() string {
	var msg string
	switch {
	case e.Kind == ErrNotFound && e.Code == CodeProjectNotFound:
		msg = fmt.Sprintf("Project configuration file '%s' not found.", e.Path)
	case e.Kind == ErrNotFound:
		msg = fmt.Sprintf("Configuration file '%s' not found.", e.Path)
	default:
		format := e.Format
		if format == "" {
			format = formatJSON
		}
		msg = fmt.Sprintf("Invalid %s format in '%s'.", format, e.Path)
	}
	if e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist) {
		msg += " " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// errIsExecutable explains a project path that names the running binary.
var errIsExecutable = errors.New("the file is this program's executable, not a project file")

// executablePath locates the running binary. Tests replace it.
var executablePath = os.Executable

// IsExecutable reports whether path names the running binary. A binary
// installed as "uber" sits exactly where its own project file would.
func IsExecutable(path string) bool {
	exe, err := executablePath()
	if err != nil {
		return false
	}
	exeInfo, err := os.Stat(exe)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(exeInfo, info)
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ToolConfigPath returns the tool config path: UBER_CONFIG when set,
// otherwise uber-config next to the binary.
func ToolConfigPath() (string, error) {
	if p := os.Getenv(toolConfigEnv); p != "" {
		return p, nil
	}
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ToolConfigFileName), nil
}

// LoadToolConfig reads and parses the tool config at path.
func LoadToolConfig(path string) (*ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: CodeToolNotFound, Path: path, Kind: ErrNotFound, Err: err}
	}

	var cfg ToolConfig
	if err := decodeStrictObject(data, &cfg); err != nil {
		return nil, &LoadError{Code: CodeToolParse, Path: path, Kind: ErrParse, Format: formatJSON, Err: err}
	}
	return &cfg, nil
}

// LoadProjectConfig reads the project config in dir. The JSON file "uber"
// takes precedence; "uber.toml" is used only when "uber" does not exist or
// is the running binary itself.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", dir, err)
	}

	jsonPath := filepath.Join(abs, ProjectConfigFileName)
	tomlPath := filepath.Join(abs, ProjectTOMLFileName)
	if IsExecutable(jsonPath) {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return loadProjectTOML(tomlPath)
		}
		return nil, &LoadError{Code: CodeProjectNotFound, Path: jsonPath, Kind: ErrNotFound, Err: errIsExecutable}
	}

	data, err := os.ReadFile(jsonPath)
	if errors.Is(err, fs.ErrNotExist) {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return loadProjectTOML(tomlPath)
		}
	}
	if err != nil {
		return nil, &LoadError{Code: CodeProjectNotFound, Path: jsonPath, Kind: ErrNotFound, Err: err}
	}

	cfg, err := ParseProjectJSON(data)
	if err != nil {
		return nil, &LoadError{Code: CodeProjectParse, Path: jsonPath, Kind: ErrParse, Format: formatJSON, Err: err}
	}
	cfg.Dir = abs
	cfg.Path = jsonPath
	return cfg, nil
}

// projectFile is the raw JSON shape of the project config. The two mappings
// stay raw so their key order can be recovered.
type projectFile struct {
	Info         *ProjectInfo    `json:"project-info"`
	Venvs        json.RawMessage `json:"venv-configs"`
	Dependencies json.RawMessage `json:"dependencies"`
}

// venvEntry and dependencyEntry are the JSON shapes of the mapping values;
// the name comes from the mapping key.
type venvEntry struct {
	Main               bool   `json:"main"`
	Python             string `json:"python"`
	SystemSitePackages bool   `json:"system-site-packages"`
}

type dependencyEntry struct {
	Venv    string `json:"venv"`
	Version string `json:"version"`
}

// ParseProjectJSON parses a project config document, applies defaults and
// runs load-time checks. Dir and Path are left empty.
func ParseProjectJSON(data []byte) (*ProjectConfig, error) {
	var raw projectFile
	if err := decodeStrictObject(data, &raw); err != nil {
		return nil, err
	}

	cfg := &ProjectConfig{}
	if raw.Info != nil {
		cfg.Info = *raw.Info
	}

	venvs, err := orderedMembers(raw.Venvs)
	if err != nil {
		return nil, fmt.Errorf("venv-configs: %w", err)
	}
	for _, m := range venvs {
		var e venvEntry
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return nil, fmt.Errorf("venv-configs.%s: %w", m.Key, err)
		}
		cfg.Venvs = append(cfg.Venvs, VenvConfig{
			Name:               m.Key,
			Main:               e.Main,
			Python:             e.Python,
			SystemSitePackages: e.SystemSitePackages,
		})
	}

	deps, err := orderedMembers(raw.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("dependencies: %w", err)
	}
	for _, m := range deps {
		var e dependencyEntry
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return nil, fmt.Errorf("dependencies.%s: %w", m.Key, err)
		}
		cfg.Dependencies = append(cfg.Dependencies, Dependency{
			Package: m.Key,
			Venv:    e.Venv,
			Version: e.Version,
		})
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies defaults and rejects configurations that cannot be used
// safely.
func finish(cfg *ProjectConfig) error {
	applyDefaults(cfg)
	for _, v := range cfg.Venvs {
		if err := CheckVenvName(v.Name); err != nil {
			return fmt.Errorf("venv-configs: %w", err)
		}
	}
	for _, d := range cfg.Dependencies {
		if strings.TrimSpace(d.Package) == "" {
			return errors.New("dependencies: package name must not be empty")
		}
	}
	return nil
}

// CheckVenvName rejects names that would place the environment outside the
// project directory.
func CheckVenvName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("environment name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("environment name %q is not allowed", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("environment name %q must not contain a path separator", name)
	}
	return nil
}

// decodeStrictObject unmarshals a document that must be a JSON object.
// A bare null is rejected instead of silently decoding to the zero value.
func decodeStrictObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		if err := json.Unmarshal(trimmed, new(any)); err != nil {
			return err
		}
		return errors.New("top-level value must be a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}
