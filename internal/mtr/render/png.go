package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/motion-prep/internal/mtr/transform"
)

// PolylinePNG writes target b's chunks to path as a PNG, one coloured line
// per chunk with the target marked at the origin.
func PolylinePNG(res *transform.Result, b int, path string) error {
	chunks, err := TargetChunks(res, b)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Target %d - %d map chunks", b, len(chunks))
	p.X.Label.Text = "X (m, heading)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	for k, c := range chunks {
		if len(c) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(c))
		for i, xy := range c {
			pts[i] = plotter.XY{X: xy[0], Y: xy[1]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("chunk %d line: %w", k, err)
		}
		line.Color = plotutil.Color(k)
		line.Width = vg.Points(1)
		p.Add(line)
	}

	origin, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return fmt.Errorf("target marker: %w", err)
	}
	origin.Shape = draw.PyramidGlyph{}
	origin.Radius = vg.Points(4)
	p.Add(origin)

	pad := extent(chunks)
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
