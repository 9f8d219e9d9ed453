package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/ocr"
	"github.com/nodewee/ocr-hub/pkg/pdf"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// fakeEngine returns the text mapped to each image and reports progress steps
type fakeEngine struct {
	texts    map[string]string
	err      error
	steps    []float64
	language string
	calls    []string
}

func (f *fakeEngine) Name() string        { return "fake" }
func (f *fakeEngine) Description() string { return "fake engine" }
func (f *fakeEngine) Available() bool     { return true }

func (f *fakeEngine) Recognize(_ context.Context, image []byte, language string, onProgress interfaces.ProgressFunc) (string, error) {
	f.calls = append(f.calls, string(image))
	f.language = language
	if f.err != nil {
		return "", f.err
	}
	for _, s := range f.steps {
		onProgress(s)
	}
	return f.texts[string(image)], nil
}

type fakeRasterizer struct {
	result *pdf.Result
	err    error
	calls  int
}

func (f *fakeRasterizer) Rasterize(context.Context, []byte) (*pdf.Result, error) {
	f.calls++
	return f.result, f.err
}

func pagesResult(n int) *pdf.Result {
	pages := make([]types.PageImage, n)
	for i := range pages {
		pages[i] = types.PageImage{Data: []byte(fmt.Sprintf("page-%d", i+1)), PageNumber: i + 1}
	}
	return &pdf.Result{Pages: pages, Renderer: "fitz"}
}

type notification struct {
	kind    types.NotificationKind
	message string
}

type recordingSink struct {
	mu            sync.Mutex
	progress      []int
	notifications []notification
}

func (s *recordingSink) Progress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, p)
}

func (s *recordingSink) Notify(kind types.NotificationKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification{kind, message})
}

func (s *recordingSink) messages() []string {
	var out []string
	for _, n := range s.notifications {
		out = append(out, n.message)
	}
	return out
}

type fakeRecorder struct {
	outcomes []string
	pages    int
}

func (r *fakeRecorder) RecordExtraction(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) RecordPages(n int) { r.pages += n }

func newTestAggregator(r PageRasterizer, engine interfaces.OCREngine) *Aggregator {
	selector := ocr.NewEmptySelector(nil)
	selector.Register(types.OCRStrategyTesseract, engine)
	return NewAggregator(r, selector, config.NewConfig(), nil)
}

func imageFile(data string) *types.SelectedFile {
	return &types.SelectedFile{Name: "scan.png", MIMEType: "image/png", Size: int64(len(data)), Data: []byte(data)}
}

func pdfFile() *types.SelectedFile {
	return &types.SelectedFile{Name: "doc.pdf", MIMEType: types.PDFMimeType, Size: 8, Data: []byte("%PDF-1.4")}
}

func TestAggregator_SingleImage(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"img": "  Hello World\n"}, steps: []float64{0, 0.5, 1}}
	rasterizer := &fakeRasterizer{}
	a := newTestAggregator(rasterizer, engine)
	sink := &recordingSink{}

	result, err := a.Process(context.Background(), imageFile("img"), sink)
	require.NoError(t, err)

	assert.Equal(t, "Hello World", result.Text)
	assert.Equal(t, "scan.png", result.FileName)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, "fake", result.EngineUsed)
	assert.Empty(t, result.RendererUsed)
	assert.Equal(t, "eng", engine.language)
	assert.Equal(t, 0, rasterizer.calls)

	assert.Equal(t, []int{0, 45, 90, 100}, sink.progress)
	assert.Empty(t, sink.notifications)
}

func TestAggregator_MultiPagePDF(t *testing.T) {
	engine := &fakeEngine{
		texts: map[string]string{"page-1": "one", "page-2": "   ", "page-3": "three\n"},
		steps: []float64{0, 0.5, 1},
	}
	rasterizer := &fakeRasterizer{result: pagesResult(3)}
	a := newTestAggregator(rasterizer, engine)
	sink := &recordingSink{}

	result, err := a.Process(context.Background(), pdfFile(), sink)
	require.NoError(t, err)

	assert.Equal(t, "--- Page 1 ---\none\n\n--- Page 3 ---\nthree", result.Text)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "fitz", result.RendererUsed)
	assert.Equal(t, []string{"page-1", "page-2", "page-3"}, engine.calls)

	assert.Equal(t, []string{
		"Converting PDF to images...",
		"Processing 3 pages from PDF...",
		"Processing page 1 of 3...",
		"Processing page 2 of 3...",
	}, sink.messages())
	for _, n := range sink.notifications {
		assert.Equal(t, types.NotificationInfo, n.kind)
	}

	assert.Equal(t, []int{0, 15, 30, 45, 60, 75, 90, 100}, sink.progress)
}

func TestAggregator_PageNotificationsEverySecondPage(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"page-1": "a"}}
	a := newTestAggregator(&fakeRasterizer{result: pagesResult(5)}, engine)
	sink := &recordingSink{}

	_, err := a.Process(context.Background(), pdfFile(), sink)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Converting PDF to images...",
		"Processing 5 pages from PDF...",
		"Processing page 1 of 5...",
		"Processing page 2 of 5...",
		"Processing page 4 of 5...",
	}, sink.messages())

	// Without engine callbacks only the per-page floors are reported
	assert.Equal(t, []int{0, 18, 36, 54, 72, 100}, sink.progress)
}

func TestAggregator_SinglePagePDFHasNoHeader(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"page-1": "only page"}}
	a := newTestAggregator(&fakeRasterizer{result: pagesResult(1)}, engine)
	sink := &recordingSink{}

	text, err := a.Run(context.Background(), pdfFile(), sink)
	require.NoError(t, err)
	assert.Equal(t, "only page", text)
	assert.Equal(t, []string{"Converting PDF to images..."}, sink.messages())
}

func TestAggregator_EmptyText(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{}}
	rec := &fakeRecorder{}
	a := newTestAggregator(&fakeRasterizer{result: pagesResult(2)}, engine).WithMetrics(rec)
	sink := &recordingSink{}

	_, err := a.Process(context.Background(), pdfFile(), sink)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeEmptyText))
	assert.Equal(t, "No text found in the document", utils.UserMessage(err))
	assert.Equal(t, 100, sink.progress[len(sink.progress)-1])
	assert.Equal(t, []string{metrics.OutcomeEmpty}, rec.outcomes)
	assert.Equal(t, 2, rec.pages)
}

func TestAggregator_UnsupportedType(t *testing.T) {
	engine := &fakeEngine{}
	a := newTestAggregator(&fakeRasterizer{}, engine)
	file := &types.SelectedFile{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("hi")}

	_, err := a.Process(context.Background(), file, nil)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeUnsupported))
	assert.Empty(t, engine.calls)
}

func TestAggregator_NoFile(t *testing.T) {
	a := newTestAggregator(&fakeRasterizer{}, &fakeEngine{})

	_, err := a.Process(context.Background(), nil, nil)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))

	_, err = a.Process(context.Background(), imageFile(""), nil)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))
}

func TestAggregator_RasterizerErrorPassesThrough(t *testing.T) {
	engine := &fakeEngine{}
	rec := &fakeRecorder{}
	a := newTestAggregator(&fakeRasterizer{err: utils.NewPasswordProtectedError(errors.New("encrypted"))}, engine).WithMetrics(rec)
	sink := &recordingSink{}

	_, err := a.Process(context.Background(), pdfFile(), sink)
	require.Error(t, err)
	assert.Equal(t, utils.MsgPasswordProtected, utils.UserMessage(err))
	assert.Empty(t, engine.calls)
	assert.Empty(t, sink.progress)
	assert.Equal(t, []string{metrics.OutcomeError}, rec.outcomes)
}

func TestAggregator_EngineError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("engine crashed")}
	a := newTestAggregator(&fakeRasterizer{}, engine)

	_, err := a.Process(context.Background(), imageFile("img"), nil)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeOCR))
	assert.Equal(t, "engine crashed", utils.UserMessage(err))
}

func TestAggregator_NoEngine(t *testing.T) {
	a := NewAggregator(&fakeRasterizer{}, ocr.NewEmptySelector(nil), config.NewConfig(), nil)

	_, err := a.Process(context.Background(), imageFile("img"), nil)
	assert.Error(t, err)
}

func TestAggregator_NormalizesUnicode(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"img": "Cafe\u0301"}}
	a := newTestAggregator(&fakeRasterizer{}, engine)

	text, err := a.Run(context.Background(), imageFile("img"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", text)
}

func TestAggregator_ProgressNeverGoesBackwards(t *testing.T) {
	engine := &fakeEngine{
		texts: map[string]string{"page-1": "a", "page-2": "b"},
		steps: []float64{0.8, 0.2, 1.5, -1},
	}
	a := newTestAggregator(&fakeRasterizer{result: pagesResult(2)}, engine)
	sink := &recordingSink{}

	_, err := a.Process(context.Background(), pdfFile(), sink)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 36, 45, 81, 90, 100}, sink.progress)
}

func TestAggregator_CancelledContext(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"img": "x"}}
	a := newTestAggregator(&fakeRasterizer{}, engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Process(ctx, imageFile("img"), nil)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeTimeout))
	assert.Empty(t, engine.calls)
}

func TestAggregator_ReportsFallback(t *testing.T) {
	engine := &fakeEngine{texts: map[string]string{"page-1": "a"}}
	result := pagesResult(1)
	result.Renderer = "pdftoppm"
	result.Fallbacks = 1
	a := newTestAggregator(&fakeRasterizer{result: result}, engine)

	out, err := a.Process(context.Background(), pdfFile(), nil)
	require.NoError(t, err)
	assert.Equal(t, "pdftoppm", out.RendererUsed)
	assert.True(t, out.FallbackUsed)
}

func TestPageProgress(t *testing.T) {
	assert.Equal(t, 0, pageProgress(0, 1, 0))
	assert.Equal(t, 90, pageProgress(0, 1, 1))
	assert.Equal(t, 30, pageProgress(1, 3, 0))
	assert.Equal(t, 44, pageProgress(0, 2, 0.99))
	assert.Equal(t, 90, pageProgress(2, 3, 7))
}

func TestNewPipeline(t *testing.T) {
	p, err := NewPipeline(config.NewConfig(), nil, metrics.New())
	require.NoError(t, err)
	assert.NotNil(t, p.Aggregator)
	assert.Equal(t, ocr.DefaultOrder, p.Selector.Strategies())
	assert.Equal(t, config.DefaultRenderers, p.Rasterizer.Chain().Names())

	cfg := config.NewConfig()
	cfg.Renderers = []string{"pdf.js"}
	_, err = NewPipeline(cfg, nil, nil)
	assert.Error(t, err)
}
