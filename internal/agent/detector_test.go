package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"healthwatch/internal/shared"
)

var (
	baseTime   = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	interval   = 4 * time.Hour
	allHealthy = shared.CheckSet{
		DiskEncryption:  shared.CheckTrue,
		OSUpdated:       shared.CheckTrue,
		AntivirusActive: shared.CheckTrue,
		SleepSettingsOK: shared.CheckTrue,
	}
)

func TestShouldSendFirstRun(t *testing.T) {
	send, reason := ShouldSend(nil, allHealthy, baseTime, interval)
	assert.True(t, send)
	assert.Equal(t, ReasonFirstRun, reason)
}

func TestShouldSendNoChangeUnderInterval(t *testing.T) {
	prev := &Snapshot{Checks: allHealthy, SentAt: baseTime}
	send, _ := ShouldSend(prev, allHealthy, baseTime.Add(15*time.Minute), interval)
	assert.False(t, send)
}

func TestShouldSendOnAnyChange(t *testing.T) {
	prev := &Snapshot{Checks: allHealthy, SentAt: baseTime}

	changed := allHealthy
	changed.OSUpdated = shared.CheckFalse

	// One differing check sends regardless of elapsed time.
	send, reason := ShouldSend(prev, changed, baseTime.Add(time.Second), interval)
	assert.True(t, send)
	assert.Equal(t, ReasonChanged, reason)
}

func TestShouldSendUnknownTransitionCounts(t *testing.T) {
	prev := &Snapshot{Checks: allHealthy, SentAt: baseTime}

	degraded := allHealthy
	degraded.DiskEncryption = shared.CheckUnknown

	send, reason := ShouldSend(prev, degraded, baseTime.Add(time.Minute), interval)
	assert.True(t, send, "a check going unknown must not be silently ignored")
	assert.Equal(t, ReasonChanged, reason)
}

func TestShouldSendMaxIntervalElapsed(t *testing.T) {
	prev := &Snapshot{Checks: allHealthy, SentAt: baseTime}
	send, reason := ShouldSend(prev, allHealthy, baseTime.Add(interval), interval)
	assert.True(t, send)
	assert.Equal(t, ReasonMaxInterval, reason)
}
