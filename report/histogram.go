package report

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteVelocityHistogram plots distribution of track velocities into PNG.
// Caller skips it when there are no velocities.
func WriteVelocityHistogram(path string, velocities []float64, bins int) error {
	if len(velocities) == 0 {
		return errors.New("no velocities to plot")
	}
	p := plot.New()
	p.Title.Text = "Velocity histogram"
	p.X.Label.Text = "Velocity (µm/s)"
	p.Y.Label.Text = "Trajectories"

	hist, err := plotter.NewHist(plotter.Values(velocities), bins)
	if err != nil {
		return errors.Wrap(err, "Can't bin velocities")
	}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "Can't save histogram '%s'", path)
	}
	return nil
}
