package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, types.OCRStrategyAuto, cfg.OCRStrategy)
	assert.Equal(t, "eng", cfg.Language)
	assert.Equal(t, []string{"fitz", "pdftoppm", "ghostscript"}, cfg.Renderers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Timeout())
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OCR_HUB_ENGINE", "tesseract-cli")
	t.Setenv("OCR_HUB_LANGUAGE", "deu")
	t.Setenv("OCR_HUB_RENDERERS", "pdftoppm, ghostscript")
	t.Setenv("OCR_HUB_TIMEOUT_SECONDS", "45")
	t.Setenv("OCR_HUB_VERBOSE", "yes")
	t.Setenv("TESSERACT_PATH", "/opt/tess/bin/tesseract")

	cfg := NewConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, types.OCRStrategyTesseractCLI, cfg.OCRStrategy)
	assert.Equal(t, "deu", cfg.Language)
	assert.Equal(t, []string{"pdftoppm", "ghostscript"}, cfg.Renderers)
	assert.Equal(t, 45*time.Second, cfg.Timeout())
	assert.True(t, cfg.EnableVerbose)
	assert.Equal(t, "/opt/tess/bin/tesseract", cfg.TesseractPath)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := NewConfig()
	cfg.OCRStrategy = "magic"
	cfg.Renderers = []string{"fitz", "fitz"}
	cfg.LogLevel = "loud"
	cfg.TimeoutSeconds = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeValidation, utils.GetErrorType(err))
	for _, want := range []string{"invalid OCR engine", "duplicate renderer", "invalid log level", "non-negative"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_LLMCallerNeedsTemplate(t *testing.T) {
	cfg := NewConfig()
	cfg.OCRStrategy = types.OCRStrategyLLMCaller
	assert.Error(t, cfg.Validate())

	cfg.LLMTemplate = "qwen-vl-ocr"
	assert.NoError(t, cfg.Validate())
}

func TestConfigFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := NewConfig()
	cfg.Language = "fra"
	cfg.Renderers = []string{"ghostscript"}
	cfg.LogLevel = "debug"
	require.NoError(t, SaveConfigFile(path, cfg))

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fra", loaded.Language)
	assert.Equal(t, []string{"ghostscript"}, loaded.Renderers)
	// runtime-only fields are not persisted
	assert.Equal(t, DefaultLogLevel, loaded.LogLevel)
}

func TestLoadConfigFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("language: jpn\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpn", cfg.Language)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultRenderers, cfg.Renderers)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("renderers: [unterminated"), 0o644))
	_, err = LoadConfigFile(path)
	assert.Error(t, err)
}

func TestGetSet(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Set("renderers", "pdftoppm,fitz"))
	value, err := cfg.Get("renderers")
	require.NoError(t, err)
	assert.Equal(t, "pdftoppm,fitz", value)

	assert.Error(t, cfg.Set("renderers", "imagemagick"))
	assert.Equal(t, []string{"pdftoppm", "fitz"}, cfg.Renderers, "rejected value must not be applied")

	_, err = cfg.Get("nope")
	assert.Error(t, err)
	assert.Contains(t, ListConfigKeys(), "tesseract_path")
}

func TestClone_IsDeep(t *testing.T) {
	cfg := NewConfig()
	cp := cfg.Clone()
	cp.Renderers[0] = "ghostscript"
	assert.Equal(t, RendererFitz, cfg.Renderers[0])
}
