package view

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// размеры в мм
const (
	pdfMargin   = 20.0
	barWidth    = 1.2
	barGap      = 0.8
	barShort    = 8.0
	barTall     = 14.0
	lineHeight  = 8.0
	headerFont  = 16.0
	bodyFont    = 12.0
	idFont      = 20.0
	footerFont  = 10.0
	footerSpace = 25.0
)

// WritePDF: одна страница на запись, шапка и подвал на каждой странице.
func WritePDF(w io.Writer, batch Batch, brand Branding) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, footerSpace)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerSpace + 5)
		pdf.SetFont("Helvetica", "I", footerFont)
		pdf.SetTextColor(128, 128, 128)
		for _, l := range brand.Footer {
			pdf.CellFormat(0, 5, tr(l), "", 1, "C", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
	})

	if len(batch.Pages) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", bodyFont)
		pdf.CellFormat(0, lineHeight, "No contacts to export.", "", 1, "L", false, 0, "")
	}

	for _, p := range batch.Pages {
		pdf.AddPage()
		pageW, _ := pdf.GetPageSize()
		top := pdf.GetY()

		pdf.SetFont("Helvetica", "B", headerFont)
		for _, l := range brand.Letterhead {
			pdf.CellFormat(pageW/2, lineHeight, tr(l), "", 1, "L", false, 0, "")
		}
		bottom := pdf.GetY()

		if p.ShortID != "" {
			right := pageW - pdfMargin
			pdf.SetFont("Courier", "B", idFont)
			pdf.SetXY(pageW/2, top)
			pdf.CellFormat(right-pageW/2, lineHeight+2, p.ShortID, "", 1, "R", false, 0, "")

			x := right - float64(len(p.Bars))*(barWidth+barGap) + barGap
			y := top + lineHeight + 4
			pdf.SetFillColor(0, 0, 0)
			for _, b := range p.Bars {
				h := barShort
				if b.Tall {
					h = barTall
				}
				pdf.Rect(x, y, barWidth, h, "F")
				x += barWidth + barGap
			}
			if end := y + barTall; end > bottom {
				bottom = end
			}
		}

		pdf.SetXY(pdfMargin, bottom+lineHeight)
		pdf.SetFont("Helvetica", "B", headerFont)
		pdf.CellFormat(0, lineHeight+2, "Contact Details", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		for _, l := range p.Lines {
			pdf.SetFont("Helvetica", "B", bodyFont)
			label := tr(l.Label + ": ")
			lw := pdf.GetStringWidth(label) + 1
			pdf.CellFormat(lw, lineHeight, label, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", bodyFont)
			pdf.MultiCell(0, lineHeight, tr(l.Value), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}
