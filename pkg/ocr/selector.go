package ocr

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/ocr/engines"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// DefaultOrder is the preference order auto selection walks
var DefaultOrder = []types.OCRStrategy{
	types.OCRStrategyTesseract,
	types.OCRStrategyTesseractCLI,
	types.OCRStrategySuryaOCR,
	types.OCRStrategyLLMCaller,
}

// Selector implements OCR engine selection
type Selector struct {
	mu      sync.RWMutex
	logger  *logger.Logger
	order   []types.OCRStrategy
	engines map[types.OCRStrategy]interfaces.OCREngine
}

// NewSelector creates a selector with every built-in engine registered
func NewSelector(cfg *config.Config, log *logger.Logger) *Selector {
	s := NewEmptySelector(log)
	s.Register(types.OCRStrategyTesseract, engines.NewTesseractEngine(cfg, log))
	s.Register(types.OCRStrategyTesseractCLI, engines.NewTesseractCLIEngine(cfg, log))
	s.Register(types.OCRStrategySuryaOCR, engines.NewSuryaOCREngine(cfg, log))
	s.Register(types.OCRStrategyLLMCaller, engines.NewLLMCallerEngine(cfg, log))
	return s
}

// NewEmptySelector creates a selector without engines
func NewEmptySelector(log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{
		logger:  log,
		engines: make(map[types.OCRStrategy]interfaces.OCREngine),
	}
}

// Register adds or replaces the engine behind a strategy. New strategies
// go to the end of the auto selection order.
func (s *Selector) Register(strategy types.OCRStrategy, engine interfaces.OCREngine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.engines[strategy]; !exists {
		s.order = append(s.order, strategy)
	}
	s.engines[strategy] = engine
}

// Select returns the engine for a strategy. Auto picks the first
// available engine in preference order.
func (s *Selector) Select(strategy types.OCRStrategy) (interfaces.OCREngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strategy == "" || strategy == types.OCRStrategyAuto {
		for _, candidate := range s.order {
			engine := s.engines[candidate]
			if engine.Available() {
				s.logger.Info("Auto-selected OCR engine: %s", engine.Description())
				return engine, nil
			}
		}
		return nil, utils.NewOCRError("no OCR engines are available on this system", nil)
	}

	engine, exists := s.engines[strategy]
	if !exists {
		return nil, utils.NewValidationError(fmt.Sprintf("unknown OCR engine: %s", strategy), nil)
	}
	if !engine.Available() {
		return nil, utils.NewOCRError(fmt.Sprintf("OCR engine '%s' is not available on this system", engine.Name()), nil)
	}

	s.logger.Info("Selected OCR engine: %s", engine.Description())
	return engine, nil
}

// Strategies returns all registered strategies in preference order
func (s *Selector) Strategies() []types.OCRStrategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.OCRStrategy(nil), s.order...)
}

// Engine returns the registered engine for a strategy
func (s *Selector) Engine(strategy types.OCRStrategy) (interfaces.OCREngine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engine, ok := s.engines[strategy]
	return engine, ok
}

// EngineStatus describes one registered engine
type EngineStatus struct {
	Strategy    types.OCRStrategy `json:"strategy"`
	Description string            `json:"description"`
	Available   bool              `json:"available"`
}

// Status probes every engine in parallel and reports them in preference order
func (s *Selector) Status(ctx context.Context) ([]EngineStatus, error) {
	strategies := s.Strategies()
	statuses := make([]EngineStatus, len(strategies))

	g, ctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		engine, _ := s.Engine(strategy)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			statuses[i] = EngineStatus{
				Strategy:    strategy,
				Description: engine.Description(),
				Available:   engine.Available(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// Available returns the strategies whose engines can run right now
func (s *Selector) Available(ctx context.Context) ([]types.OCRStrategy, error) {
	statuses, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	var available []types.OCRStrategy
	for _, st := range statuses {
		if st.Available {
			available = append(available, st.Strategy)
		}
	}
	return available, nil
}

var _ interfaces.OCRSelector = (*Selector)(nil)
