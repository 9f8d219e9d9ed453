package export

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nodewee/ocr-hub/pkg/history"
)

// HistoryMarkdown writes the history list, newest first, as a Markdown document
func HistoryMarkdown(w io.Writer, entries []history.Entry) error {
	md := markdown.NewMarkdown(w)

	md.H1("OCR Hub History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No extractions yet.")
		return md.Build()
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		chars, words := Stats(e.Text)
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.FileName,
			e.Timestamp,
			strconv.Itoa(chars),
			strconv.Itoa(words),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "File", "Extracted", "Characters", "Words"},
		Rows:   rows,
	})
	md.PlainText("")

	for i, e := range entries {
		md.H2(strconv.Itoa(i+1) + ". " + e.FileName)
		md.PlainText("")
		md.PlainText("*" + e.Timestamp + "*")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightText, e.Text)
		md.PlainText("")
	}

	return md.Build()
}
