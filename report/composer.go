package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Artifact file names inside run directory
const (
	JSONName      = "report.json"
	MarkdownName  = "report.md"
	HistogramName = "vel_hist.png"
	DashboardName = "dashboard.html"
	DatabaseName  = "report.db"
)

// Artifacts holds paths of produced files. Skipped or failed artifacts are empty.
type Artifacts struct {
	JSON      string `json:"report_json"`
	Markdown  string `json:"report_md"`
	Histogram string `json:"histogram,omitempty"`
	Dashboard string `json:"dashboard,omitempty"`
	Database  string `json:"database,omitempty"`
}

// Composer writes every report artifact of a run into a directory.
type Composer struct {
	HistogramBins int
	MarkdownRows  int
	// Database disables SQLite artifact when false
	Database bool
	Logger   *log.Logger
}

// NewComposer returns composer with 30 histogram bins and 50 markdown rows
func NewComposer() *Composer {
	return &Composer{
		HistogramBins: 30,
		MarkdownRows:  50,
		Database:      true,
	}
}

func (c *Composer) logf(format string, v ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// Compose writes artifacts of the document into dir. Every artifact is
// attempted even if another one fails; failures are joined into the returned
// error. Histogram and dashboard are skipped when there are no tracks.
func (c *Composer) Compose(ctx context.Context, doc Document, dir string) (Artifacts, error) {
	var out Artifacts
	if err := os.MkdirAll(dir, 0755); err != nil {
		return out, fmt.Errorf("can't create report directory '%s': %w", dir, err)
	}
	var errs []error
	var charts []string

	if len(doc.Tracks) > 0 {
		path := filepath.Join(dir, HistogramName)
		if err := WriteVelocityHistogram(path, doc.Velocities(), c.HistogramBins); err != nil {
			errs = append(errs, fmt.Errorf("histogram: %w", err))
		} else {
			out.Histogram = path
			charts = append(charts, HistogramName)
		}

		path = filepath.Join(dir, DashboardName)
		if err := WriteDashboard(path, doc); err != nil {
			errs = append(errs, fmt.Errorf("dashboard: %w", err))
		} else {
			out.Dashboard = path
		}
	} else {
		c.logf("[report] no trajectories, histogram and dashboard skipped")
	}

	path := filepath.Join(dir, JSONName)
	if err := WriteJSON(path, doc); err != nil {
		errs = append(errs, fmt.Errorf("json: %w", err))
	} else {
		out.JSON = path
	}

	path = filepath.Join(dir, MarkdownName)
	if err := WriteMarkdown(path, doc, c.MarkdownRows, charts); err != nil {
		errs = append(errs, fmt.Errorf("markdown: %w", err))
	} else {
		out.Markdown = path
	}

	if c.Database {
		path = filepath.Join(dir, DatabaseName)
		if err := c.writeDatabase(ctx, path, doc); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		} else {
			out.Database = path
		}
	}

	if len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	c.logf("[report] %d tracks written to %s", len(doc.Tracks), dir)
	return out, nil
}

func (c *Composer) writeDatabase(ctx context.Context, path string, doc Document) error {
	store, err := OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(ctx, doc)
}
