package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ServerProcessConfig is cmd/sanguosha-server's optional TOML config
// file, letting a deployment pin listen address, game-data directory,
// and allowed origins outside of command-line flags. CLI flags take
// precedence when both are supplied; see cmd/sanguosha-server/main.go.
type ServerProcessConfig struct {
	Addr           string   `toml:"addr"`
	ConfigDir      string   `toml:"config_dir"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Debug          bool     `toml:"debug"`
}

// LoadServerProcessConfig parses a TOML process config file. A missing
// file is the caller's concern, not this function's: callers that treat
// "no config file" as "use flag defaults" should stat the path first.
func LoadServerProcessConfig(path string) (*ServerProcessConfig, error) {
	var cfg ServerProcessConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode process config %s: %w", path, err)
	}
	return &cfg, nil
}
