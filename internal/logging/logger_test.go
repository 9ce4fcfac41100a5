package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosefOnlyWritesInVerboseMode(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, zerolog.InfoLevel, false).Verbosef("walked %d entries", 3)
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	New(&loud, zerolog.InfoLevel, true).Verbosef("walked %d entries", 3)
	assert.Contains(t, loud.String(), "walked 3 entries")
}

func TestMeasureLogsElapsed(t *testing.T) {
	var buf bytes.Buffer
	stop := New(&buf, zerolog.InfoLevel, true).Measure("Planning copy")
	stop()
	assert.Contains(t, buf.String(), "Planning copy done")
	assert.Contains(t, buf.String(), "elapsed")
}

func TestZeroValueDiscards(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() {
		l.Infof("nothing")
		l.Warnf("nothing")
		l.Measure("nothing")()
	})
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
