package diagram

import (
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

const plotSamples = 200

var linePalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// ExportSpanDiagram writes a spanwise overview image: each signal normalized
// by its peak magnitude, dashed verticals at the control sections and the
// Gauss evaluation stations along the baseline. The format follows the file
// extension; unknown extensions fall back to PNG.
func ExportSpanDiagram(signals map[string]blade.Series, sections []float64, evalPoints [][2]float64, filename string) error {
	p := plot.New()
	p.Title.Text = "Blade span profile"
	p.X.Label.Text = "r (m)"
	p.Y.Label.Text = "signal / max|signal|"
	p.Legend.Top = true

	names := make([]string, 0, len(signals))
	for n := range signals {
		names = append(names, n)
	}
	sort.Strings(names)

	for ni, name := range names {
		sig := signals[name]
		lo, hi := sig.Min(), sig.Max()
		if hi <= lo {
			continue
		}

		peak := 0.0
		for _, y := range sig.Y {
			if a := abs(y); a > peak {
				peak = a
			}
		}
		if peak == 0 {
			peak = 1
		}

		pts := make(plotter.XYs, plotSamples)
		for i := range pts {
			x := lo + (hi-lo)*float64(i)/float64(plotSamples-1)
			pts[i] = plotter.XY{X: x, Y: sig.At(x) / peak}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = linePalette[ni%len(linePalette)]
		p.Add(line)
		p.Legend.Add(name, line)
	}

	for _, s := range sections {
		v, err := plotter.NewLine(plotter.XYs{{X: s, Y: -0.05}, {X: s, Y: 1.05}})
		if err != nil {
			return err
		}
		v.LineStyle.Width = vg.Points(1)
		v.LineStyle.Color = color.Gray{Y: 120}
		v.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(v)
	}

	if len(evalPoints) > 0 {
		pts := make(plotter.XYs, 0, 2*len(evalPoints))
		for _, pair := range evalPoints {
			pts = append(pts, plotter.XY{X: pair[0], Y: 0}, plotter.XY{X: pair[1], Y: 0})
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	}

	width := 10 * vg.Inch
	height := 5 * vg.Inch

	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
