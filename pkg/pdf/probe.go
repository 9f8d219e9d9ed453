package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nodewee/ocr-hub/pkg/utils"
)

// Probe opens the document with a pure-Go parser to count its pages and
// to classify password-protected or malformed input before an external
// tool is started. A zero count with a nil error means the parser could not
// tell, and the caller should let the renderer decide.
func Probe(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = utils.NewCorruptDocumentError(fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, classifyProbeError(err)
	}

	n := reader.NumPage()
	if n == 0 {
		return 0, utils.NewCorruptDocumentError(errors.New("document has no pages"))
	}
	return n, nil
}

func classifyProbeError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, pdf.ErrInvalidPassword), strings.Contains(msg, "password"):
		return utils.NewPasswordProtectedError(err)
	case strings.Contains(msg, "not a pdf"), strings.Contains(msg, "malformed"):
		return utils.NewCorruptDocumentError(err)
	default:
		// Unsupported features are left to the renderer
		return nil
	}
}
