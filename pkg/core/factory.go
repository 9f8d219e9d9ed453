package core

import (
	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/ocr"
	"github.com/nodewee/ocr-hub/pkg/pdf"
)

// Pipeline bundles the aggregator with the parts it was built from
type Pipeline struct {
	Aggregator *Aggregator
	Selector   *ocr.Selector
	Rasterizer *pdf.Rasterizer
}

// NewPipeline wires the rasterizer chain and OCR engines described by cfg.
// m may be nil.
func NewPipeline(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Pipeline, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rasterizer, err := pdf.NewRasterizerFromConfig(cfg, log)
	if err != nil {
		return nil, err
	}
	rasterizer.OnFallback(func(from, to string) {
		log.Warn("PDF renderer %s unavailable, falling back to %s", from, to)
		m.RecordFallback(from, to)
	})

	selector := ocr.NewSelector(cfg, log)
	aggregator := NewAggregator(rasterizer, selector, cfg, log)
	if m != nil {
		aggregator.WithMetrics(m)
	}

	log.Info("Pipeline ready: engine=%s language=%s renderers=%v", cfg.OCRStrategy, cfg.Language, rasterizer.Chain().Names())
	return &Pipeline{
		Aggregator: aggregator,
		Selector:   selector,
		Rasterizer: rasterizer,
	}, nil
}
