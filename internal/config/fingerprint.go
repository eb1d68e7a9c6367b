package config

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a short hash of the effective project configuration.
// Two configurations with the same fingerprint provision the same
// environments and dependencies in the same order. Key order is part of the
// hash because it changes behavior.
func Fingerprint(cfg *ProjectConfig) string {
	if cfg == nil {
		return ""
	}
	// Marshalling a struct of strings, bools and slices cannot fail.
	data, _ := json.Marshal(cfg)
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
