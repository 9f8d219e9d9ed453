package pdf

import (
	"fmt"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// NewBackend creates a backend by its configured name
func NewBackend(name string, cfg *config.Config, log *logger.Logger) (interfaces.RasterBackend, error) {
	switch name {
	case config.RendererFitz:
		return NewFitzBackend(), nil
	case config.RendererPdftoppm:
		return NewPdftoppmBackend(cfg.PdftoppmPath, log), nil
	case config.RendererGhostscript:
		return NewGhostscriptBackend(cfg.GhostscriptPath, log), nil
	default:
		return nil, utils.NewValidationError(fmt.Sprintf("unknown renderer: %s", name), nil)
	}
}

// NewRasterizerFromConfig builds the fallback chain in the configured order
func NewRasterizerFromConfig(cfg *config.Config, log *logger.Logger) (*Rasterizer, error) {
	backends := make([]interfaces.RasterBackend, 0, len(cfg.Renderers))
	for _, name := range cfg.Renderers {
		backend, err := NewBackend(name, cfg, log)
		if err != nil {
			return nil, err
		}
		backends = append(backends, backend)
	}
	return NewRasterizer(NewFallbackChain(backends...), utils.DefaultRetryPolicy(), log), nil
}
