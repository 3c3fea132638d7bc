package report

import (
	"bytes"
	"os"
	"text/template"

	"github.com/LdDl/motility-go/motility"
	"github.com/pkg/errors"
)

const markdownTemplate = `# Motility report
{{if .Doc.RunID}}
Run ` + "`{{.Doc.RunID}}`" + `, {{.Doc.FramesProcessed}} frames processed.
{{end}}
## Parameters

- weights: {{.Doc.Params.Weights}}
- conf: {{.Doc.Params.ConfidenceThreshold}}
- microns_per_pixel: {{.Doc.Params.MicronsPerPixel}}
- fps: {{.Doc.Params.FPS}}
- drop_volume_ul: {{.Doc.Params.ReferenceVolumeUL}}
- tracker: {{.Doc.Params.Tracker}}
{{- if .Doc.Params.MaxFrames}}
- max_frames: {{.Doc.Params.MaxFrames}}
{{- end}}
{{- if .Doc.Params.SkipFrames}}
- skip_frames: {{.Doc.Params.SkipFrames}}
{{- end}}

## Summary

- **progressive_motility_pct**: {{printf "%.2f" .Doc.Summary.ProgressiveMotilityPct}}
- **mean_vigor_index**: {{printf "%.2f" .Doc.Summary.MeanVigorIndex}}
- **trajectory_count**: {{.Doc.Summary.TrajectoryCount}}

## Estimated concentration

- {{printf "%.2e" .Doc.ConcentrationPerML}} per mL
{{if .Rows}}
## Per-track statistics{{if .Truncated}} (first {{len .Rows}} of {{len .Doc.Tracks}}){{end}}

| track_id | n_points | distance_px | velocity_um_s | linearity | vigor_index | vigor_class |
|---:|---:|---:|---:|---:|---:|:---|
{{- range .Rows}}
| {{.TrackID}} | {{.Points}} | {{printf "%.2f" .DistancePx}} | {{printf "%.2f" .VelocityUmPerS}} | {{printf "%.3f" .Linearity}} | {{printf "%.2f" .VigorIndex}} | {{.VigorClass}} |
{{- end}}
{{end}}
{{- if .Charts}}
## Charts
{{range .Charts}}
![{{.}}]({{.}})
{{- end}}
{{end}}
{{- if .Doc.Params.Warnings}}
## Warnings
{{range .Doc.Params.Warnings}}
- {{.}}
{{- end}}
{{end -}}
`

var markdownTmpl = template.Must(template.New("report.md").Parse(markdownTemplate))

type markdownView struct {
	Doc       Document
	Rows      []motility.TrackMetrics
	Truncated bool
	Charts    []string
}

// RenderMarkdown renders narrative report. At most maxRows tracks are listed;
// charts are relative paths of images to embed.
func RenderMarkdown(doc Document, maxRows int, charts []string) ([]byte, error) {
	rows := doc.Tracks
	truncated := false
	if maxRows >= 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		truncated = true
	}
	var buf bytes.Buffer
	err := markdownTmpl.Execute(&buf, markdownView{
		Doc:       doc,
		Rows:      rows,
		Truncated: truncated,
		Charts:    charts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't render markdown report")
	}
	return buf.Bytes(), nil
}

// WriteMarkdown renders narrative report into file
func WriteMarkdown(path string, doc Document, maxRows int, charts []string) error {
	data, err := RenderMarkdown(doc, maxRows, charts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "Can't write markdown report '%s'", path)
	}
	return nil
}
