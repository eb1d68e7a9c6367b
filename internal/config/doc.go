// Package config loads uber's two configuration files: the tool-wide
// uber-config next to the binary and the per-project uber file (JSON, or
// uber.toml). Environments and dependencies keep their declared order.
package config
