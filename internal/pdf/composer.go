package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	bodyFont       = "Arial"
	bodyFontSize   = 12
	bodyLineHeight = 10
	pageMargin     = 10
)

// Compose writes a single-page report to outPath: the summary text as wrapped
// body text with the chart image below it, scaled to the page width minus the
// margins. An empty chartPath produces a text-only report.
func Compose(summaryText, chartPath, outPath string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont(bodyFont, "", bodyFontSize)
	doc.MultiCell(0, bodyLineHeight, summaryText, "", "L", false)

	if chartPath != "" {
		pageWidth, _ := doc.GetPageSize()
		doc.ImageOptions(chartPath, pageMargin, doc.GetY(), pageWidth-2*pageMargin, 0, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		doc.Ln(60)
	}

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
