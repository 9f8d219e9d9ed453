package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/imaging"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/pdf"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// PageRasterizer turns a PDF into the page images handed to OCR
type PageRasterizer interface {
	Rasterize(ctx context.Context, data []byte) (*pdf.Result, error)
}

// Recorder receives pipeline measurements
type Recorder interface {
	RecordExtraction(outcome string, duration time.Duration)
	RecordPages(n int)
}

// Aggregator is the recognition pipeline: it turns a selected file into
// page images, runs OCR over them in order and joins the text.
type Aggregator struct {
	rasterizer PageRasterizer
	engines    interfaces.OCRSelector
	strategy   types.OCRStrategy
	language   string
	timeout    time.Duration
	logger     *logger.Logger
	metrics    Recorder
	now        func() time.Time
}

// NewAggregator creates the pipeline. The OCR engine is resolved on every
// run so engines installed after start-up are picked up.
func NewAggregator(rasterizer PageRasterizer, engines interfaces.OCRSelector, cfg *config.Config, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	language := cfg.Language
	if language == "" {
		language = constants.DefaultLanguage
	}
	return &Aggregator{
		rasterizer: rasterizer,
		engines:    engines,
		strategy:   cfg.OCRStrategy,
		language:   language,
		timeout:    cfg.Timeout(),
		logger:     log,
		metrics:    (*metrics.Metrics)(nil),
		now:        time.Now,
	}
}

// WithMetrics records every run into rec
func (a *Aggregator) WithMetrics(rec Recorder) *Aggregator {
	if rec != nil {
		a.metrics = rec
	}
	return a
}

// Run executes the pipeline and returns only the joined text
func (a *Aggregator) Run(ctx context.Context, file *types.SelectedFile, sink interfaces.Sink) (string, error) {
	result, err := a.Process(ctx, file, sink)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Process executes the pipeline over one selected file. Progress and
// informational notifications go to sink; the final success or failure
// notification is left to the caller.
func (a *Aggregator) Process(ctx context.Context, file *types.SelectedFile, sink interfaces.Sink) (*interfaces.ExtractionResult, error) {
	start := a.now()
	if sink == nil {
		sink = nopSink{}
	}

	result, err := a.process(ctx, file, sink)
	duration := a.now().Sub(start)

	switch {
	case err == nil:
		result.ProcessTimeMS = duration.Milliseconds()
		a.metrics.RecordExtraction(metrics.OutcomeSuccess, duration)
		a.logger.Info("Extracted %d characters from %s in %v", len(result.Text), result.FileName, duration)
	case utils.IsType(err, utils.ErrorTypeEmptyText):
		a.metrics.RecordExtraction(metrics.OutcomeEmpty, duration)
		a.logger.Warn("No text found in %s", file.Name)
	default:
		a.metrics.RecordExtraction(metrics.OutcomeError, duration)
		a.logger.Error("Extraction failed: %v", err)
	}
	return result, err
}

func (a *Aggregator) process(ctx context.Context, file *types.SelectedFile, sink interfaces.Sink) (*interfaces.ExtractionResult, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, utils.NewValidationError("no file selected", nil)
	}
	if file.MediaType() == types.UnsupportedMediaType {
		return nil, utils.NewUnsupportedError(fmt.Sprintf("Unsupported file type: %s", file.MIMEType), nil)
	}

	engine, err := a.engines.Select(a.strategy)
	if err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result := &interfaces.ExtractionResult{
		FileName:   file.Name,
		EngineUsed: engine.Name(),
	}

	images, err := a.collectImages(ctx, file, sink, result)
	if err != nil {
		return nil, err
	}
	result.Pages = len(images)

	multiPage := file.IsPDF() && len(images) > 1
	progress := newProgressTracker(sink)
	text, err := a.recognizeAll(ctx, engine, images, multiPage, sink, progress)
	if err != nil {
		return nil, err
	}

	progress.set(constants.ProgressComplete)
	if text == "" {
		return nil, utils.NewEmptyTextError()
	}
	result.Text = text
	return result, nil
}

// collectImages returns one image for a plain picture or the rendered
// pages for a PDF
func (a *Aggregator) collectImages(ctx context.Context, file *types.SelectedFile, sink interfaces.Sink, result *interfaces.ExtractionResult) ([][]byte, error) {
	if !file.IsPDF() {
		data, err := imaging.NormalizeForOCR(file.Data, file.MIMEType)
		if err != nil {
			return nil, err
		}
		return [][]byte{data}, nil
	}

	sink.Notify(types.NotificationInfo, "Converting PDF to images...")
	rendered, err := a.rasterizer.Rasterize(ctx, file.Data)
	if err != nil {
		return nil, err
	}
	result.RendererUsed = rendered.Renderer
	result.FallbackUsed = rendered.Fallbacks > 0

	if len(rendered.Pages) > 1 {
		sink.Notify(types.NotificationInfo, fmt.Sprintf("Processing %d pages from PDF...", len(rendered.Pages)))
	}

	images := make([][]byte, len(rendered.Pages))
	for i, page := range rendered.Pages {
		images[i] = page.Data
	}
	return images, nil
}

// recognizeAll runs OCR over the images strictly in order
func (a *Aggregator) recognizeAll(ctx context.Context, engine interfaces.OCREngine, images [][]byte, multiPage bool,
	sink interfaces.Sink, progress *progressTracker) (string, error) {
	total := len(images)
	var allText strings.Builder

	for i, image := range images {
		if err := ctx.Err(); err != nil {
			return "", utils.WrapError(err, utils.ErrorTypeTimeout, "recognition was interrupted")
		}

		if multiPage && (i == 0 || (i+1)%2 == 0) {
			sink.Notify(types.NotificationInfo, fmt.Sprintf("Processing page %d of %d...", i+1, total))
		}

		progress.set(pageProgress(i, total, 0))
		a.logger.Debug("Recognizing image %d/%d with %s", i+1, total, engine.Name())

		raw, err := engine.Recognize(ctx, image, a.language, func(p float64) {
			progress.set(pageProgress(i, total, p))
		})
		if err != nil {
			return "", wrapEngineError(err)
		}
		a.metrics.RecordPages(1)

		pageText := strings.TrimSpace(norm.NFC.String(raw))
		if pageText == "" {
			continue
		}
		if multiPage {
			fmt.Fprintf(&allText, constants.PageTextHeader+"\n%s\n\n", i+1, pageText)
		} else {
			allText.WriteString(pageText)
		}
	}

	return strings.TrimSpace(allText.String()), nil
}

// pageProgress maps progress p of image i into the share reserved for recognition
func pageProgress(i, total int, p float64) int {
	if p < 0 || math.IsNaN(p) {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return int(math.Floor((float64(i) + p) * constants.RecognitionShare / float64(total)))
}

// wrapEngineError keeps classified errors and gives plain ones the OCR type
func wrapEngineError(err error) error {
	if utils.GetErrorType(err) == utils.ErrorTypeTimeout {
		return utils.WrapError(err, utils.ErrorTypeTimeout, "recognition was interrupted")
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.NewOCRError(err.Error(), err)
}

// progressTracker forwards progress clamped to 0..100 and never backwards
type progressTracker struct {
	mu   sync.Mutex
	sink interfaces.Sink
	last int
}

func newProgressTracker(sink interfaces.Sink) *progressTracker {
	return &progressTracker{sink: sink, last: -1}
}

func (p *progressTracker) set(value int) {
	if value < 0 {
		value = 0
	}
	if value > constants.ProgressComplete {
		value = constants.ProgressComplete
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if value <= p.last {
		return
	}
	p.last = value
	p.sink.Progress(value)
}

type nopSink struct{}

func (nopSink) Progress(int) {}

func (nopSink) Notify(types.NotificationKind, string) {}

var _ interfaces.FileProcessor = (*Aggregator)(nil)
