package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

const (
	ConfigFileName = "config.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// GetConfigDir returns the XDG config directory for ocr-hub.
// On Linux: ~/.config/ocr-hub
func GetConfigDir() string {
	return filepath.Join(xdg.ConfigHome, constants.AppName)
}

// GetConfigFilePath returns the full path to the configuration file
func GetConfigFilePath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// LoadConfig loads configuration from file or creates default if not exists
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	cfg, err := LoadConfigFile(configPath)
	if errors.Is(err, ErrConfigNotFound) {
		return createDefaultConfigFile(configPath)
	}
	return cfg, err
}

// LoadConfigFile reads a YAML config file. Keys missing from the file keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read config file")
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to parse config file")
	}
	return cfg, nil
}

// createDefaultConfigFile writes a default configuration with auto-detected tools
func createDefaultConfigFile(configPath string) (*Config, error) {
	cfg := NewConfig()
	DetectToolPaths(cfg)

	if err := SaveConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "✅ Created default configuration file: %s\n", configPath)
	return cfg, nil
}

// SaveConfig saves configuration to the default location
func SaveConfig(cfg *Config) error {
	return SaveConfigFile(GetConfigFilePath(), cfg)
}

// SaveConfigFile writes cfg as YAML, creating the directory when needed
func SaveConfigFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultDirPermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, constants.DefaultFilePermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write config file")
	}
	return nil
}

// DetectToolPaths replaces bare tool names with absolute paths when they can be found
func DetectToolPaths(cfg *Config) {
	platform := constants.GetPlatformConfig()

	cfg.TesseractPath = detectTool(cfg.TesseractPath, platform.TesseractPaths)
	cfg.PdftoppmPath = detectTool(cfg.PdftoppmPath, platform.PdftoppmPaths)
	cfg.GhostscriptPath = detectTool(cfg.GhostscriptPath, platform.GhostscriptPaths)
	cfg.FFmpegPath = detectTool(cfg.FFmpegPath, platform.FFmpegPaths)
	cfg.SuryaOCRPath = detectTool(cfg.SuryaOCRPath, nil)
	cfg.LLMCallerPath = detectTool(cfg.LLMCallerPath, nil)
	if cfg.CameraDevice == "" {
		cfg.CameraDevice = platform.DefaultCamera
	}
}

// detectTool returns the first executable candidate, or current when none is found
func detectTool(current string, candidates []string) string {
	all := append([]string{utils.DefaultPathUtils.GetExecutableName(current)}, candidates...)

	for _, pathOrName := range all {
		if pathOrName == "" {
			continue
		}
		if filepath.IsAbs(pathOrName) {
			if strings.Contains(pathOrName, "*") {
				if matches, _ := filepath.Glob(pathOrName); len(matches) > 0 {
					pathOrName = matches[0]
				}
			}
			if utils.DefaultPathUtils.IsExecutable(pathOrName) {
				return utils.NormalizePath(pathOrName)
			}
			continue
		}
		if found, err := exec.LookPath(pathOrName); err == nil {
			return utils.NormalizePath(found)
		}
	}
	return current
}

// keyAccessors maps persisted config keys to their fields
var keyAccessors = map[string]struct {
	get func(*Config) string
	set func(*Config, string)
}{
	"tesseract_path":   {func(c *Config) string { return c.TesseractPath }, func(c *Config, v string) { c.TesseractPath = v }},
	"pdftoppm_path":    {func(c *Config) string { return c.PdftoppmPath }, func(c *Config, v string) { c.PdftoppmPath = v }},
	"ghostscript_path": {func(c *Config) string { return c.GhostscriptPath }, func(c *Config, v string) { c.GhostscriptPath = v }},
	"ffmpeg_path":      {func(c *Config) string { return c.FFmpegPath }, func(c *Config, v string) { c.FFmpegPath = v }},
	"surya_ocr_path":   {func(c *Config) string { return c.SuryaOCRPath }, func(c *Config, v string) { c.SuryaOCRPath = v }},
	"llm_caller_path":  {func(c *Config) string { return c.LLMCallerPath }, func(c *Config, v string) { c.LLMCallerPath = v }},
	"ocr_engine":       {func(c *Config) string { return string(c.OCRStrategy) }, func(c *Config, v string) { c.OCRStrategy = types.OCRStrategy(v) }},
	"language":         {func(c *Config) string { return c.Language }, func(c *Config, v string) { c.Language = v }},
	"llm_template":     {func(c *Config) string { return c.LLMTemplate }, func(c *Config, v string) { c.LLMTemplate = v }},
	"renderers":        {func(c *Config) string { return strings.Join(c.Renderers, ",") }, func(c *Config, v string) { c.Renderers = SplitList(v) }},
	"camera_device":    {func(c *Config) string { return c.CameraDevice }, func(c *Config, v string) { c.CameraDevice = v }},
	"listen_addr":      {func(c *Config) string { return c.ListenAddr }, func(c *Config, v string) { c.ListenAddr = v }},
}

// ListConfigKeys returns all persisted keys in sorted order
func ListConfigKeys() []string {
	keys := make([]string, 0, len(keyAccessors))
	for k := range keyAccessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a persisted key
func (c *Config) Get(key string) (string, error) {
	acc, ok := keyAccessors[key]
	if !ok {
		return "", utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	return acc.get(c), nil
}

// Set updates a persisted key and re-validates the result
func (c *Config) Set(key, value string) error {
	acc, ok := keyAccessors[key]
	if !ok {
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}

	next := c.Clone()
	acc.set(next, value)
	if err := next.Validate(); err != nil {
		return err
	}
	acc.set(c, value)
	return nil
}

// GetConfigValue gets a specific configuration value by key
func GetConfigValue(key string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// SetConfigValue sets a specific configuration value by key and saves the file
func SetConfigValue(key, value string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return SaveConfig(cfg)
}
