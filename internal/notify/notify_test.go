package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderExpiresToasts(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRecorder(3 * time.Second)
	r.now = func() time.Time { return now }

	r.Success("Student saved")
	now = now.Add(2 * time.Second)
	r.Error("Case could not be closed")

	active := r.Active()
	require.Len(t, active, 2)
	assert.Equal(t, LevelSuccess, active[0].Level)

	now = now.Add(2 * time.Second)
	active = r.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Case could not be closed", active[0].Message)

	assert.Len(t, r.Drain(), 1)
	assert.Empty(t, r.Active())
}

func TestRecorderWithoutTTLKeepsUntilDrained(t *testing.T) {
	r := NewRecorder(0)
	r.Success("a")
	r.Success("b")
	assert.Len(t, r.Active(), 2)
	assert.Len(t, r.Drain(), 2)
	assert.Empty(t, r.Drain())
}

func TestPrinterAndMulti(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(0)
	n := Multi(NewPrinter(&buf), nil, rec)

	n.Success("Saved")
	n.Error("Forbidden")

	assert.Equal(t, "✓ Saved\n✗ Forbidden\n", buf.String())
	assert.Len(t, rec.Drain(), 2)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Success("Saved")
	n.Error("Nope")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Saved", entries[0].ContextMap()["toast"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)

	Nop{}.Success("ignored")
}
