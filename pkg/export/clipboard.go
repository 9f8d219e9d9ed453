package export

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// SystemClipboard writes to the desktop clipboard
type SystemClipboard struct{}

var _ interfaces.Clipboard = SystemClipboard{}

// WriteText copies text verbatim. There is no retry.
func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return utils.NewClipboardError(errors.New("no clipboard utility available"))
	}
	if err := clipboard.WriteAll(text); err != nil {
		return utils.NewClipboardError(err)
	}
	return nil
}
