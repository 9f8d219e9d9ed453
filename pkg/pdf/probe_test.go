package pdf

import (
	"errors"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/utils"
)

func TestProbe_CountsPages(t *testing.T) {
	n, err := Probe(minimalPDF(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestProbe_RejectsNonPDF(t *testing.T) {
	_, err := Probe([]byte("this is not a pdf at all"))
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeCorruptDocument, utils.GetErrorType(err))
}

func TestClassifyProbeError(t *testing.T) {
	assert.True(t, utils.IsType(classifyProbeError(pdf.ErrInvalidPassword), utils.ErrorTypePasswordProtected))
	assert.True(t, utils.IsType(classifyProbeError(errors.New("malformed PDF: bad xref")), utils.ErrorTypeCorruptDocument))
	assert.NoError(t, classifyProbeError(errors.New("unsupported filter JBIG2Decode")))
}
