/*
Package config manages the TOML config for pinyinctrlf.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/pinyinctrlf/internal/utils"
	"github.com/bastiangx/pinyinctrlf/pkg/candidate"
	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Index     IndexConfig     `toml:"index"`
	Search    SearchConfig    `toml:"search"`
	Highlight HighlightConfig `toml:"highlight"`
	Server    ServerConfig    `toml:"server"`
}

// IndexConfig controls candidate extraction and index builds.
type IndexConfig struct {
	MinNameLen     int    `toml:"min_name_len"`
	MaxNameLen     int    `toml:"max_name_len"`
	BuildDelayMs   int    `toml:"build_delay_ms"`
	SurnamesFile   string `toml:"surnames_file"`
	TextLayerClass string `toml:"text_layer_class"`
}

// SearchConfig tunes ranking.
// A bonus cap of 0 turns that frequency bonus off.
type SearchConfig struct {
	MaxResults    int `toml:"max_results"`
	ShortQueryLen int `toml:"short_query_len"`
	ShortBonusCap int `toml:"short_bonus_cap"`
	LongBonusCap  int `toml:"long_bonus_cap"`
	DebounceMs    int `toml:"debounce_ms"`
	CompleteLimit int `toml:"complete_limit"`
}

// HighlightConfig bounds highlight passes.
type HighlightConfig struct {
	MaxMatches int `toml:"max_matches"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit    int `toml:"max_limit"`
	MaxQueryLen int `toml:"max_query_len"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform user config dir (~/.config/pinyinctrlf, $XDG_CONFIG_HOME, %APPDATA%)
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := utils.UserConfigDir(homeDir)
	if utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/pinyinctrlf/config.toml
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MinNameLen:     2,
			MaxNameLen:     4,
			BuildDelayMs:   10,
			SurnamesFile:   "",
			TextLayerClass: "textLayer",
		},
		Search: SearchConfig{
			MaxResults:    8,
			ShortQueryLen: 3,
			ShortBonusCap: 10,
			LongBonusCap:  5,
			DebounceMs:    120,
			CompleteLimit: 8,
		},
		Highlight: HighlightConfig{
			MaxMatches: 200,
		},
		Server: ServerConfig{
			MaxLimit:    64,
			MaxQueryLen: 60,
		},
	}
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every section that still decodes and defaults the rest.
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
	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "highlight"); ok {
		if val, ok := utils.ExtractInt64(section, "max_matches"); ok {
			config.Highlight.MaxMatches = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	config.sanitize()
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractInt64(data, "min_name_len"); ok {
		index.MinNameLen = val
	}
	if val, ok := utils.ExtractInt64(data, "max_name_len"); ok {
		index.MaxNameLen = val
	}
	if val, ok := utils.ExtractDurationMs(data, "build_delay_ms"); ok {
		index.BuildDelayMs = val
	}
	if val, ok := utils.ExtractString(data, "surnames_file"); ok {
		index.SurnamesFile = val
	}
	if val, ok := utils.ExtractString(data, "text_layer_class"); ok {
		index.TextLayerClass = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		search.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "short_query_len"); ok {
		search.ShortQueryLen = val
	}
	if val, ok := utils.ExtractInt64(data, "short_bonus_cap"); ok {
		search.ShortBonusCap = val
	}
	if val, ok := utils.ExtractInt64(data, "long_bonus_cap"); ok {
		search.LongBonusCap = val
	}
	if val, ok := utils.ExtractDurationMs(data, "debounce_ms"); ok {
		search.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "complete_limit"); ok {
		search.CompleteLimit = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
}

// sanitize puts back defaults for values that would break extraction or ranking.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Index.MinNameLen < 1 || c.Index.MaxNameLen < c.Index.MinNameLen || c.Index.MaxNameLen > candidate.MaxBound {
		log.Warnf("Invalid name length bounds %d-%d, using %d-%d",
			c.Index.MinNameLen, c.Index.MaxNameLen, def.Index.MinNameLen, def.Index.MaxNameLen)
		c.Index.MinNameLen = def.Index.MinNameLen
		c.Index.MaxNameLen = def.Index.MaxNameLen
	}
	if c.Index.BuildDelayMs < 0 {
		c.Index.BuildDelayMs = def.Index.BuildDelayMs
	}
	if c.Search.ShortBonusCap < 0 {
		c.Search.ShortBonusCap = def.Search.ShortBonusCap
	}
	if c.Search.LongBonusCap < 0 {
		c.Search.LongBonusCap = def.Search.LongBonusCap
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = def.Search.MaxResults
	}
	if c.Highlight.MaxMatches <= 0 {
		c.Highlight.MaxMatches = def.Highlight.MaxMatches
	}
	if c.Server.MaxLimit <= 0 {
		c.Server.MaxLimit = def.Server.MaxLimit
	}
}

// MatcherOptions converts the search section to matcher options.
func (s SearchConfig) MatcherOptions() fuzzy.Options {
	return fuzzy.Options{
		MaxResults:    s.MaxResults,
		ShortQueryLen: s.ShortQueryLen,
		ShortBonusCap: disabledIfZero(s.ShortBonusCap),
		LongBonusCap:  disabledIfZero(s.LongBonusCap),
	}
}

func disabledIfZero(v int) int {
	if v == 0 {
		return -1
	}
	return v
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the search values and saves to file
func (c *Config) Update(configPath string, maxResults, debounceMs *int) error {
	if maxResults != nil {
		c.Search.MaxResults = *maxResults
	}
	if debounceMs != nil {
		c.Search.DebounceMs = *debounceMs
	}
	return SaveConfig(c, configPath)
}
