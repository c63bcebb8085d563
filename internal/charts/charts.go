package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jmercer/deckforge/internal/deck"
)

// Config holds shared chart appearance settings.
type Config struct {
	Title      string
	Subtitle   string
	Width      string
	Height     string
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultConfig returns the default chart appearance.
func DefaultConfig() Config {
	return Config{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint is a single labeled value.
type DataPoint struct {
	Label string
	Value float64
}

// TypeDistribution aggregates deck cards by primary type, sorted by
// count descending.
func TypeDistribution(result *deck.DeckResult) []DataPoint {
	counts := make(map[string]int)
	for _, c := range result.Cards {
		t := c.PrimaryType
		if t == "" {
			t = "Other"
		}
		counts[t] += c.Quantity
	}

	points := make([]DataPoint, 0, len(counts))
	for t, n := range counts {
		points = append(points, DataPoint{Label: t, Value: float64(n)})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	return points
}

// PriceDistribution buckets deck cards by unit price. Bucket edges are
// in dollars; the last bucket is open-ended.
func PriceDistribution(result *deck.DeckResult) []DataPoint {
	edges := []float64{0.5, 1, 2, 5, 10, 25}
	labels := []string{"< $0.50", "$0.50-1", "$1-2", "$2-5", "$5-10", "$10-25", "$25+"}
	counts := make([]int, len(labels))

	for _, c := range result.Cards {
		idx := len(edges)
		for i, edge := range edges {
			if c.Price < edge {
				idx = i
				break
			}
		}
		counts[idx] += c.Quantity
	}

	points := make([]DataPoint, len(labels))
	for i, label := range labels {
		points[i] = DataPoint{Label: label, Value: float64(counts[i])}
	}
	return points
}

// RenderTypePie writes an interactive pie chart of the deck's type
// distribution to an HTML file.
func RenderTypePie(result *deck.DeckResult, config Config, outputPath string) error {
	if config.Title == "" {
		config.Title = fmt.Sprintf("%s - Card Types", result.Commander)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)

	data := TypeDistribution(result)
	items := make([]opts.PieData, len(data))
	for i, p := range data {
		items[i] = opts.PieData{Name: p.Label, Value: p.Value}
	}

	pie.AddSeries("Types", items).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	return renderToFile(pie.Render, outputPath)
}

// RenderPriceBar writes an interactive bar chart of the deck's price
// distribution to an HTML file.
func RenderPriceBar(result *deck.DeckResult, config Config, outputPath string) error {
	if config.Title == "" {
		config.Title = fmt.Sprintf("%s - Price Breakdown", result.Commander)
	}
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("Total: $%.2f", result.TotalPrice)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{config.Colors[0]}),
	)

	data := PriceDistribution(result)
	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, p := range data {
		xLabels[i] = p.Label
		yData[i] = opts.BarData{Value: p.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return renderToFile(bar.Render, outputPath)
}

func renderToFile(render func(w io.Writer) error, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the given file in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
