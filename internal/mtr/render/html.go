package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/motion-prep/internal/mtr/transform"
)

// PolylineHTML writes an interactive scatter of target b's chunks to w. Each
// point carries its chunk index as the third value, shown in the tooltip.
func PolylineHTML(res *transform.Result, b int, w io.Writer) error {
	chunks, err := TargetChunks(res, b)
	if err != nil {
		return err
	}

	var data []opts.ScatterData
	for k, c := range chunks {
		for _, xy := range c {
			data = append(data, opts.ScatterData{Value: []interface{}{xy[0], xy[1], k}})
		}
	}
	pad := extent(chunks)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Target-centric map chunks", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Target %d", b), Subtitle: fmt.Sprintf("chunks=%d points=%d", len(chunks), len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("polylines", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("target", []opts.ScatterData{{Value: []interface{}{0, 0, -1}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}
