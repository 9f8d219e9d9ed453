package pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// errNoBackend is returned when the chain has run past its last backend
var errNoBackend = errors.New("no PDF renderer left in the fallback chain")

// DefaultOptions renders at most five pages at twice the native scale
func DefaultOptions() interfaces.RasterOptions {
	return interfaces.RasterOptions{
		MaxPages:    constants.MaxPDFPages,
		Scale:       constants.RenderScale,
		JPEGQuality: constants.JPEGQuality,
	}
}

// FallbackChain is an ordered list of backends with a cursor.
// The cursor only moves forward; once advanced it stays on the new backend
// for later invocations until Reset is called.
type FallbackChain struct {
	mu       sync.Mutex
	backends []interfaces.RasterBackend
	idx      int
}

// NewFallbackChain creates a chain positioned at the first backend
func NewFallbackChain(backends ...interfaces.RasterBackend) *FallbackChain {
	return &FallbackChain{backends: backends}
}

// Current returns the backend under the cursor
func (c *FallbackChain) Current() (interfaces.RasterBackend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx >= len(c.backends) {
		return nil, false
	}
	return c.backends[c.idx], true
}

// Advance moves the cursor to the next backend and reports whether one exists
func (c *FallbackChain) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx+1 >= len(c.backends) {
		return false
	}
	c.idx++
	return true
}

// Reset moves the cursor back to the first backend
func (c *FallbackChain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx = 0
}

// Names lists the backends in order
func (c *FallbackChain) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

// Result is the output of one successful rasterization
type Result struct {
	Pages     []types.PageImage
	Renderer  string
	Fallbacks int
}

// FallbackObserver is told every time the chain advances
type FallbackObserver func(from, to string)

// Rasterizer converts PDFs into page images through a fallback chain
type Rasterizer struct {
	chain      *FallbackChain
	policy     utils.RetryPolicy
	opts       interfaces.RasterOptions
	logger     *logger.Logger
	onFallback FallbackObserver
}

// NewRasterizer creates a rasterizer with the default options
func NewRasterizer(chain *FallbackChain, policy utils.RetryPolicy, log *logger.Logger) *Rasterizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Rasterizer{
		chain:  chain,
		policy: policy,
		opts:   DefaultOptions(),
		logger: log,
	}
}

// WithOptions overrides the render options
func (r *Rasterizer) WithOptions(opts interfaces.RasterOptions) *Rasterizer {
	r.opts = opts
	return r
}

// OnFallback registers an observer for chain advances
func (r *Rasterizer) OnFallback(fn FallbackObserver) {
	r.onFallback = fn
}

// Chain exposes the fallback chain
func (r *Rasterizer) Chain() *FallbackChain {
	return r.chain
}

// Rasterize renders pages 1..min(pageCount, MaxPages) in order. When the
// current backend is unavailable the chain is advanced and the whole page
// loop starts again from page one, at most policy.MaxFallbacks times.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) (*Result, error) {
	used := 0
	for {
		backend, ok := r.chain.Current()
		if !ok {
			return nil, utils.NewRendererUnavailableError(errNoBackend)
		}

		pages, err := r.runBackend(ctx, backend, data)
		if err == nil {
			r.logger.Debug("Rasterized %d pages with %s", len(pages), backend.Name())
			return &Result{Pages: pages, Renderer: backend.Name(), Fallbacks: used}, nil
		}

		if utils.IsType(err, utils.ErrorTypeRendererUnavailable) && r.policy.Allows(used) && r.chain.Advance() {
			used++
			next, _ := r.chain.Current()
			r.logger.Warn("PDF renderer %s unavailable, retrying with %s: %v", backend.Name(), next.Name(), err)
			if r.onFallback != nil {
				r.onFallback(backend.Name(), next.Name())
			}
			continue
		}

		return nil, classify(err)
	}
}

func (r *Rasterizer) runBackend(ctx context.Context, backend interfaces.RasterBackend, data []byte) ([]types.PageImage, error) {
	if !backend.Available() {
		return nil, utils.NewRendererUnavailableError(fmt.Errorf("%s is not installed", backend.Name()))
	}

	pages, err := backend.Rasterize(ctx, data, r.opts)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, utils.NewCorruptDocumentError(errors.New("document has no pages"))
	}
	if len(pages) > r.opts.MaxPages {
		pages = pages[:r.opts.MaxPages]
	}
	return pages, nil
}

// classify maps a terminal backend failure onto the rasterizer taxonomy
func classify(err error) error {
	for _, kind := range []utils.ErrorType{
		utils.ErrorTypePasswordProtected,
		utils.ErrorTypeCorruptDocument,
		utils.ErrorTypeRendererUnavailable,
		utils.ErrorTypeTimeout,
	} {
		if utils.IsType(err, kind) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.WrapError(err, utils.ErrorTypeTimeout, "PDF rendering was interrupted")
	}
	return utils.NewConversionError(err)
}
