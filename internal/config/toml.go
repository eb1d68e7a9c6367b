package config

import (
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// tomlProject is the TOML shape of the project config:
//
//	[project-info]
//	project-name = "demo"
//
//	[venv-configs.app]
//	main = true
//
//	[dependencies.requests]
//	venv = "app"
//	version = "2.31.0"
type tomlProject struct {
	Info         ProjectInfo           `toml:"project-info"`
	Venvs        map[string]VenvConfig `toml:"venv-configs"`
	Dependencies map[string]Dependency `toml:"dependencies"`
}

// loadProjectTOML parses uber.toml. TOML tables decode into maps, so the
// declared order is recovered from the decoder metadata, which lists keys in
// document order.
func loadProjectTOML(path string) (*ProjectConfig, error) {
	var raw tomlProject
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, &LoadError{Code: CodeProjectParse, Path: path, Kind: ErrParse, Format: formatTOML, Err: err}
	}

	cfg := &ProjectConfig{Info: raw.Info}
	for _, name := range tableOrder(md, "venv-configs", raw.Venvs) {
		v := raw.Venvs[name]
		v.Name = name
		cfg.Venvs = append(cfg.Venvs, v)
	}
	for _, name := range tableOrder(md, "dependencies", raw.Dependencies) {
		d := raw.Dependencies[name]
		d.Package = name
		cfg.Dependencies = append(cfg.Dependencies, d)
	}

	if err := finish(cfg); err != nil {
		return nil, &LoadError{Code: CodeProjectParse, Path: path, Kind: ErrParse, Format: formatTOML, Err: err}
	}
	cfg.Dir = filepath.Dir(path)
	cfg.Path = path
	return cfg, nil
}

// tableOrder returns the keys of the sub-tables under parent in document
// order. Keys the metadata does not mention are appended sorted.
func tableOrder[V any](md toml.MetaData, parent string, tables map[string]V) []string {
	seen := make(map[string]bool, len(tables))
	var order []string
	for _, key := range md.Keys() {
		if len(key) < 2 || key[0] != parent {
			continue
		}
		name := key[1]
		if _, ok := tables[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}

	var rest []string
	for name := range tables {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
