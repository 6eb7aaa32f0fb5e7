package main

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/katalvlaran/tvgl/convergence"
)

// series extracts (iteration, f(check)) points, skipping values that
// cannot be drawn (NaN, and non-positive ones when positive is set).
func series(h convergence.History, f func(convergence.Check) float64, positive bool) plotter.XYs {
	var xys plotter.XYs
	for _, c := range h {
		v := f(c)
		if math.IsNaN(v) || math.IsInf(v, 0) || (positive && v <= 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(c.Iteration), Y: v})
	}

	return xys
}

// historyPlots returns the objective trace and the residuals against their
// tolerances on a log scale.
func historyPlots(h convergence.History) (*plot.Plot, *plot.Plot, error) {
	obj := plot.New()
	obj.Title.Text = "objective"
	obj.X.Label.Text = "iteration"
	if xys := series(h, func(c convergence.Check) float64 { return c.Obj }, false); len(xys) > 0 {
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, nil, err
		}
		obj.Add(line, plotter.NewGrid())
	}

	res := plot.New()
	res.Title.Text = "residuals"
	res.X.Label.Text = "iteration"
	res.Legend.Top = true
	traces := []struct {
		name string
		f    func(convergence.Check) float64
	}{
		{"rnorm", func(c convergence.Check) float64 { return c.RNorm }},
		{"snorm", func(c convergence.Check) float64 { return c.SNorm }},
		{"eps_pri", func(c convergence.Check) float64 { return c.EPri }},
		{"eps_dual", func(c convergence.Check) float64 { return c.EDual }},
	}
	var drawn int
	for i, tr := range traces {
		xys := series(h, tr.f, true)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, nil, err
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / 2)
		res.Add(line)
		res.Legend.Add(tr.name, line)
		drawn++
	}
	if drawn > 0 {
		res.Y.Scale = plot.LogScale{}
		res.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	return obj, res, nil
}

// writePlot renders both history panels, stacked, into a PNG at path.
func writePlot(path string, h convergence.History) error {
	obj, res, err := historyPlots(h)
	if err != nil {
		return err
	}

	img := vgimg.New(8*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(12), PadTop: vg.Points(6), PadBottom: vg.Points(6)}
	plots := [][]*plot.Plot{{obj}, {res}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("png: %w", err)
	}

	return f.Close()
}
