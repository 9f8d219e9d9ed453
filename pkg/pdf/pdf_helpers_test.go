package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/types"
)

// minimalPDF builds a valid PDF with the given number of blank pages
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(num int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj(3+i, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// fakeBackend renders a fixed number of pages or fails with err
type fakeBackend struct {
	name      string
	available bool
	pages     int
	err       error
	calls     int
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) Rasterize(_ context.Context, _ []byte, opts interfaces.RasterOptions) ([]types.PageImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	n := f.pages
	if n > opts.MaxPages {
		n = opts.MaxPages
	}
	out := make([]types.PageImage, n)
	for i := range out {
		out[i] = types.PageImage{Data: []byte(fmt.Sprintf("%s-page-%d", f.name, i+1)), PageNumber: i + 1}
	}
	return out, nil
}
