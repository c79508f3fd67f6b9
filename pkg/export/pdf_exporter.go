package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

const utf8FontFamily = "portal"

// PDFExporter renders datasets into a tabular PDF. The built-in core fonts only cover Latin-1,
// so Hangul requires a TrueType font supplied through fontPath.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. An empty fontPath falls back to the core Arial font.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// ContentType returns the MIME type of Render output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension returns the file extension of Render output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a landscape PDF with the dataset title and a bordered table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)

	family, text := "Arial", latin1Only
	if e.fontPath != "" {
		pdf.AddUTF8Font(utf8FontFamily, "", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font %s: %w", e.fontPath, err)
		}
		family, text = utf8FontFamily, func(s string) string { return s }
	}
	// The UTF-8 font is registered in the regular style only.
	bold := "B"
	if family == utf8FontFamily {
		bold = ""
	}

	pdf.AddPage()
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	if data.Title != "" {
		pdf.SetFont(family, bold, 14)
		pdf.CellFormat(0, 10, text(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont(family, bold, 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, text(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, text(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// latin1Only replaces runes the core fonts cannot draw.
func latin1Only(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || r > 0xFF {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
