package chart

import (
	"errors"
	"fmt"
	"os"

	"github.com/rpattn/logreport/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	chartTitle  = "Failures by Dataset"
	chartWidth  = 600
	chartHeight = 300
)

// RenderBarChart draws per-dataset failure counts as a PNG bar chart at path,
// overwriting any prior file there.
func RenderBarChart(counts []domain.DatasetCount, path string) error {
	if len(counts) == 0 {
		return errors.New("no dataset counts to chart")
	}

	bars := make([]chart.Value, 0, len(counts))
	for _, entry := range counts {
		bars = append(bars, chart.Value{
			Label: entry.Dataset,
			Value: float64(entry.Count),
		})
	}

	graph := chart.BarChart{
		Title:    chartTitle,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Bars:     bars,
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer out.Close()

	if err := graph.Render(chart.PNG, out); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}
