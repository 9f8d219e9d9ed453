package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/types"
)

// Default values and constants
const (
	DefaultLogLevel       = "info"
	DefaultEnableVerbose  = false
	DefaultOCRStrategy    = types.OCRStrategyAuto
	DefaultLanguage       = constants.DefaultLanguage
	DefaultListenAddr     = constants.DefaultListenAddr
	DefaultTimeoutSeconds = 0 // no timeout

	// Tool names looked up in PATH
	DefaultTesseractPath   = "tesseract"
	DefaultPdftoppmPath    = "pdftoppm"
	DefaultGhostscriptPath = "gs"
	DefaultFFmpegPath      = "ffmpeg"
	DefaultSuryaOCRPath    = "surya_ocr"
	DefaultLLMCallerPath   = "llm-caller"
)

// Rasterizer backend names, in default fallback order
const (
	RendererFitz        = "fitz"
	RendererPdftoppm    = "pdftoppm"
	RendererGhostscript = "ghostscript"
)

// DefaultRenderers is the default rasterizer fallback order
var DefaultRenderers = []string{RendererFitz, RendererPdftoppm, RendererGhostscript}

// Config holds application configuration
type Config struct {
	// External tool paths
	TesseractPath   string `yaml:"tesseract_path"`
	PdftoppmPath    string `yaml:"pdftoppm_path"`
	GhostscriptPath string `yaml:"ghostscript_path"`
	FFmpegPath      string `yaml:"ffmpeg_path"`
	SuryaOCRPath    string `yaml:"surya_ocr_path"`
	LLMCallerPath   string `yaml:"llm_caller_path"`

	// Pipeline settings
	OCRStrategy  types.OCRStrategy `yaml:"ocr_engine"`
	Language     string            `yaml:"language"`
	LLMTemplate  string            `yaml:"llm_template,omitempty"`
	Renderers    []string          `yaml:"renderers"`
	CameraDevice string            `yaml:"camera_device,omitempty"`
	ListenAddr   string            `yaml:"listen_addr"`

	// Runtime settings (not persisted to file)
	TimeoutSeconds int    `yaml:"-"`
	LogLevel       string `yaml:"-"`
	EnableVerbose  bool   `yaml:"-"`
}

// NewConfig returns a configuration holding only built-in defaults
func NewConfig() *Config {
	return &Config{
		TesseractPath:   DefaultTesseractPath,
		PdftoppmPath:    DefaultPdftoppmPath,
		GhostscriptPath: DefaultGhostscriptPath,
		FFmpegPath:      DefaultFFmpegPath,
		SuryaOCRPath:    DefaultSuryaOCRPath,
		LLMCallerPath:   DefaultLLMCallerPath,
		OCRStrategy:     DefaultOCRStrategy,
		Language:        DefaultLanguage,
		Renderers:       append([]string(nil), DefaultRenderers...),
		ListenAddr:      DefaultListenAddr,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		LogLevel:        DefaultLogLevel,
		EnableVerbose:   DefaultEnableVerbose,
	}
}

// DefaultConfig returns the configuration by loading from file or creating default
func DefaultConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config file, using built-in defaults: %v\n", err)
		return NewConfig()
	}
	return cfg
}

// LoadConfigWithEnvOverrides loads .env, the config file, then applies environment overrides
func LoadConfigWithEnvOverrides() *Config {
	// A missing .env is the common case
	_ = godotenv.Load()

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)
	return cfg
}

// ApplyEnvOverrides applies OCR_HUB_* and tool path variables onto cfg
func ApplyEnvOverrides(config *Config) {
	// Tool paths
	if value := os.Getenv("TESSERACT_PATH"); value != "" {
		config.TesseractPath = value
	}
	if value := os.Getenv("PDFTOPPM_PATH"); value != "" {
		config.PdftoppmPath = value
	}
	if value := os.Getenv("GHOSTSCRIPT_PATH"); value != "" {
		config.GhostscriptPath = value
	}
	if value := os.Getenv("FFMPEG_PATH"); value != "" {
		config.FFmpegPath = value
	}
	if value := os.Getenv("SURYA_OCR_PATH"); value != "" {
		config.SuryaOCRPath = value
	}
	if value := os.Getenv("LLM_CALLER_PATH"); value != "" {
		config.LLMCallerPath = value
	}

	// Pipeline and runtime settings
	if value := os.Getenv("OCR_HUB_ENGINE"); value != "" {
		config.OCRStrategy = types.OCRStrategy(value)
	}
	if value := os.Getenv("OCR_HUB_LANGUAGE"); value != "" {
		config.Language = value
	}
	if value := os.Getenv("OCR_HUB_LLM_TEMPLATE"); value != "" {
		config.LLMTemplate = value
	}
	if value := os.Getenv("OCR_HUB_RENDERERS"); value != "" {
		config.Renderers = SplitList(value)
	}
	if value := os.Getenv("OCR_HUB_CAMERA_DEVICE"); value != "" {
		config.CameraDevice = value
	}
	if value := os.Getenv("OCR_HUB_LISTEN_ADDR"); value != "" {
		config.ListenAddr = value
	}
	if value := os.Getenv("OCR_HUB_TIMEOUT_SECONDS"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			config.TimeoutSeconds = intVal
		}
	}
	if value := os.Getenv("OCR_HUB_LOG_LEVEL"); value != "" {
		config.LogLevel = value
	}
	if value := os.Getenv("OCR_HUB_VERBOSE"); value != "" {
		config.EnableVerbose = value == "true" || value == "1" || value == "yes"
	}
}

// SplitList parses a comma separated list, dropping blanks
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()
	return validator.Validate(c)
}

// Timeout bounds one pipeline run; zero means no timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	cp := *c
	cp.Renderers = append([]string(nil), c.Renderers...)
	return &cp
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{OCREngine: %s, Language: %s, Renderers: %s, LogLevel: %s, Verbose: %v}",
		c.OCRStrategy, c.Language, strings.Join(c.Renderers, ","), c.LogLevel, c.EnableVerbose)
}
