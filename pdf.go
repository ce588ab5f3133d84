package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10
	pdfLineHeight = 5
	pdfFontSize   = 9
	pdfTabWidth   = 4
)

// generatePDF renders the records of a run into a syntax-highlighted PDF,
// one record per page, in the same order as the text summary.
func generatePDF(records []FileRecord, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	// The core fonts are cp1252; runes outside it are transliterated.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, r := range records {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, tr(fmt.Sprintf("File %d: path= %s", r.Index, r.RelativePath)), "", "L", false)
		pdf.Ln(pdfLineHeight / 2)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if err := writeHighlightedCode(pdf, style, tr, r.Content, r.RelativePath); err != nil {
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, tr(r.Content), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

// pickLexer chooses a lexer by file name first, then by content.
func pickLexer(content, name string) chroma.Lexer {
	lexer := lexers.Match(name)
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// writeHighlightedCode tokenizes content and writes it to the PDF with the
// style's colors.
func writeHighlightedCode(pdf *gofpdf.Fpdf, style *chroma.Style, tr func(string) string, content, name string) error {
	iterator, err := pickLexer(content, name).Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)
		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		pdf.SetFontStyle(fontStyle)

		colour := entry.Colour
		if !colour.IsSet() {
			colour = style.Get(chroma.Text).Colour
		}
		if colour.IsSet() {
			pdf.SetTextColor(int(colour.Red()), int(colour.Green()), int(colour.Blue()))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.Write(pdfLineHeight, tr(strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth))))
	}
	pdf.Ln(-1)
	return nil
}
