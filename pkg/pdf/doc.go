// Package pdf rasterizes the leading pages of a PDF into JPEG images.
//
// Rendering is delegated to interchangeable backends (MuPDF through go-fitz,
// poppler's pdftoppm, ghostscript). A Rasterizer walks an ordered
// FallbackChain of backends and advances it only when the current backend is
// unavailable, bounded by a utils.RetryPolicy. Password-protected and
// structurally invalid documents are reported as such and never trigger a
// fallback.
package pdf
