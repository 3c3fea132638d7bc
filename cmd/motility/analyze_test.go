package main

import (
	"regexp"
	"testing"
	"time"

	"github.com/LdDl/motility-go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	id := newRunID(time.Unix(1700000000, 0))
	assert.Regexp(t, regexp.MustCompile(`^1700000000_[0-9a-f]{6}$`), id)
	assert.NotEqual(t, id, newRunID(time.Unix(1700000000, 0)))
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	cmd := analyzeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--input", "a.mp4", "--fps", "30", "--tracker", "iou", "--no-video"}))

	fps := 50.0
	mpp := 0.9
	cfg := &config.File{FPS: &fps, MicronsPerPixel: &mpp}
	flags := cmd.Flags()
	parsed := &analyzeFlags{}
	parsed.fps, _ = flags.GetFloat64("fps")
	parsed.tracker, _ = flags.GetString("tracker")
	parsed.noVideo, _ = flags.GetBool("no-video")
	applyFlags(cmd, parsed, cfg)

	assert.Equal(t, 30.0, cfg.GetFPS())
	// file value survives when flag is not given
	assert.Equal(t, 0.9, cfg.GetMicronsPerPixel())
	assert.Equal(t, "iou", cfg.GetTracker())
	assert.False(t, cfg.GetAnnotateVideo())
	assert.Nil(t, cfg.Weights)
}
