package config

import (
	"fmt"
)

// Calibration converts pixels and frames into physical units.
type Calibration struct {
	MicronsPerPixel   float64 `json:"microns_per_pixel"`
	FPS               float64 `json:"fps"`
	ReferenceVolumeUL float64 `json:"reference_volume_ul"`
}

// DefaultCalibration returns calibration used when nothing is configured
func DefaultCalibration() Calibration {
	return Calibration{
		MicronsPerPixel:   DefaultMicronsPerPixel,
		FPS:               DefaultFPS,
		ReferenceVolumeUL: DefaultReferenceVolumeUL,
	}
}

// Warnings lists degenerate calibration values. Such values do not stop a run:
// velocity falls back to a one second time base and concentration to zero.
func (c Calibration) Warnings() []string {
	var warnings []string
	if c.FPS <= 0 {
		warnings = append(warnings, fmt.Sprintf("fps is %g, velocities use a 1 s time base", c.FPS))
	}
	if c.MicronsPerPixel <= 0 {
		warnings = append(warnings, fmt.Sprintf("microns per pixel is %g, velocities are not physical", c.MicronsPerPixel))
	}
	if c.ReferenceVolumeUL <= 0 {
		warnings = append(warnings, fmt.Sprintf("reference volume is %g µL, concentration is not estimated", c.ReferenceVolumeUL))
	}
	return warnings
}
