package report

import (
	"fmt"
	"os"

	"github.com/LdDl/motility-go/motility"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// WriteDashboard renders interactive HTML page with vigor class distribution
// and velocity versus linearity scatter.
func WriteDashboard(path string, doc Document) error {
	classes := []motility.VigorClass{motility.VigorLow, motility.VigorMedium, motility.VigorHigh}
	counts := VigorClassCounts(doc.Tracks)

	x := make([]string, 0, len(classes))
	y := make([]opts.BarData, 0, len(classes))
	for _, class := range classes {
		x = append(x, string(class))
		y = append(y, opts.BarData{Value: counts[class]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motility report", Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Vigor classes", Subtitle: fmt.Sprintf("trajectories=%d", doc.Summary.TrajectoryCount)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("tracks", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	points := make([]opts.ScatterData, 0, len(doc.Tracks))
	for _, t := range doc.Tracks {
		points = append(points, opts.ScatterData{
			Name:  fmt.Sprintf("ID:%d", t.TrackID),
			Value: []interface{}{t.VelocityUmPerS, t.Linearity},
		})
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity vs linearity", Subtitle: fmt.Sprintf("progressive=%.2f%%", doc.Summary.ProgressiveMotilityPct)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Velocity (µm/s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "Linearity", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("tracks", points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	page := components.NewPage()
	page.AddCharts(bar, scatter)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Can't create dashboard '%s'", path)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return errors.Wrap(err, "Can't render dashboard")
	}
	return nil
}
