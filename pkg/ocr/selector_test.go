package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

type fakeEngine struct {
	name      string
	available bool
}

func (f *fakeEngine) Name() string        { return f.name }
func (f *fakeEngine) Description() string { return "fake " + f.name }
func (f *fakeEngine) Available() bool     { return f.available }
func (f *fakeEngine) Recognize(context.Context, []byte, string, interfaces.ProgressFunc) (string, error) {
	return f.name, nil
}

func newTestSelector() *Selector {
	s := NewEmptySelector(nil)
	s.Register(types.OCRStrategyTesseract, &fakeEngine{name: "tesseract"})
	s.Register(types.OCRStrategyTesseractCLI, &fakeEngine{name: "tesseract-cli", available: true})
	s.Register(types.OCRStrategySuryaOCR, &fakeEngine{name: "surya_ocr", available: true})
	return s
}

func TestSelector_AutoPicksFirstAvailable(t *testing.T) {
	engine, err := newTestSelector().Select(types.OCRStrategyAuto)
	require.NoError(t, err)
	assert.Equal(t, "tesseract-cli", engine.Name())

	engine, err = newTestSelector().Select("")
	require.NoError(t, err)
	assert.Equal(t, "tesseract-cli", engine.Name())
}

func TestSelector_Explicit(t *testing.T) {
	s := newTestSelector()

	engine, err := s.Select(types.OCRStrategySuryaOCR)
	require.NoError(t, err)
	assert.Equal(t, "surya_ocr", engine.Name())

	_, err = s.Select(types.OCRStrategyTesseract)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeOCR))

	_, err = s.Select(types.OCRStrategyLLMCaller)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))
}

func TestSelector_NothingAvailable(t *testing.T) {
	s := NewEmptySelector(nil)
	s.Register(types.OCRStrategyTesseract, &fakeEngine{name: "tesseract"})

	_, err := s.Select(types.OCRStrategyAuto)
	assert.Error(t, err)
}

func TestSelector_RegisterReplacesInPlace(t *testing.T) {
	s := newTestSelector()
	s.Register(types.OCRStrategyTesseract, &fakeEngine{name: "replacement", available: true})

	assert.Equal(t, []types.OCRStrategy{
		types.OCRStrategyTesseract,
		types.OCRStrategyTesseractCLI,
		types.OCRStrategySuryaOCR,
	}, s.Strategies())

	engine, err := s.Select(types.OCRStrategyAuto)
	require.NoError(t, err)
	assert.Equal(t, "replacement", engine.Name())
}

func TestSelector_StatusAndAvailable(t *testing.T) {
	s := newTestSelector()

	statuses, err := s.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, types.OCRStrategyTesseract, statuses[0].Strategy)
	assert.False(t, statuses[0].Available)
	assert.Equal(t, "fake tesseract-cli", statuses[1].Description)

	available, err := s.Available(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.OCRStrategy{types.OCRStrategyTesseractCLI, types.OCRStrategySuryaOCR}, available)
}

func TestNewSelector_RegistersBuiltins(t *testing.T) {
	s := NewSelector(config.NewConfig(), nil)
	assert.Equal(t, DefaultOrder, s.Strategies())
}
