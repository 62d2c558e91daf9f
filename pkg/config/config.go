/*
Package config manages the TOML config for like.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/like/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Index  IndexConfig  `toml:"index"`
	Match  MatchConfig  `toml:"match"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// IndexConfig controls how candidate lists are indexed.
type IndexConfig struct {
	MaxKeys         int    `toml:"max_keys"`
	DuplicatePolicy string `toml:"duplicate_policy"`
}

// MatchConfig controls pattern queries.
type MatchConfig struct {
	MaxMatches int `toml:"max_matches"`
	MaxPattern int `toml:"max_pattern"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	DataFile     string `toml:"data_file"`
	ReloadEvery  int    `toml:"reload_every"`
	SimilarLimit int    `toml:"similar_limit"`
}

// CliConfig holds interactive mode options.
type CliConfig struct {
	ShowSimilar bool `toml:"show_similar"`
	Color       bool `toml:"color"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MaxKeys:         1024,
			DuplicatePolicy: "skip",
		},
		Match: MatchConfig{
			MaxMatches: 1,
			MaxPattern: 60,
		},
		Server: ServerConfig{
			DataFile:     "",
			ReloadEvery:  0,
			SimilarLimit: 24,
		},
		CLI: CliConfig{
			ShowSimilar: false,
			Color:       true,
		},
	}
}

// GetDefaultConfigPath returns the default path for like.toml,
// inside the platform config dir or one of its writable fallbacks.
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath("like.toml")
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: ~/.config/like/like.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, recovering whatever sections still parse.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "match"); ok {
		extractMatchConfig(section, &config.Match)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractInt64(data, "max_keys"); ok {
		index.MaxKeys = val
	}
	if val, ok := utils.ExtractString(data, "duplicate_policy"); ok {
		index.DuplicatePolicy = val
	}
}

func extractMatchConfig(data map[string]any, match *MatchConfig) {
	if val, ok := utils.ExtractInt64(data, "max_matches"); ok {
		match.MaxMatches = val
	}
	if val, ok := utils.ExtractInt64(data, "max_pattern"); ok {
		match.MaxPattern = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "data_file"); ok {
		server.DataFile = val
	}
	if val, ok := utils.ExtractInt64(data, "reload_every"); ok {
		server.ReloadEvery = val
	}
	if val, ok := utils.ExtractInt64(data, "similar_limit"); ok {
		server.SimilarLimit = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_similar"); ok {
		cli.ShowSimilar = val
	}
	if val, ok := utils.ExtractBool(data, "color"); ok {
		cli.Color = val
	}
}

// sanitize puts out-of-range values back to their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Index.MaxKeys < 1 {
		log.Warnf("index.max_keys=%d is invalid, using %d", c.Index.MaxKeys, def.Index.MaxKeys)
		c.Index.MaxKeys = def.Index.MaxKeys
	}
	if c.Match.MaxMatches < 1 {
		log.Warnf("match.max_matches=%d is invalid, using %d", c.Match.MaxMatches, def.Match.MaxMatches)
		c.Match.MaxMatches = def.Match.MaxMatches
	}
	if c.Match.MaxPattern < 1 {
		c.Match.MaxPattern = def.Match.MaxPattern
	}
	if c.Server.ReloadEvery < 0 {
		c.Server.ReloadEvery = 0
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
