package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMinMax_Empty(t *testing.T) {
	r := NewRollingMinMax()
	assert.True(t, r.Empty())
	assert.Equal(t, 0.0, r.Min())
	assert.Equal(t, 0.0, r.Max())
}

func TestRollingMinMax_SingleValue(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(12.5, 0)
	assert.False(t, r.Empty())
	assert.Equal(t, 12.5, r.Min())
	assert.Equal(t, 12.5, r.Max())
}

func TestRollingMinMax_MultipleValuesSameMinute(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(20, 0)
	r.updateMinute(0.5, 0)
	r.updateMinute(50, 0)
	assert.Equal(t, 0.5, r.Min())
	assert.Equal(t, 50.0, r.Max())
}

func TestRollingMinMax_MultipleMinutes(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(25, 100)
	r.updateMinute(40, 101)
	r.updateMinute(5, 102)
	assert.Equal(t, 5.0, r.Min())
	assert.Equal(t, 40.0, r.Max())
}

func TestRollingMinMax_MissedMinutesClearsOldData(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(30, 0)
	r.updateMinute(10, 1)
	// Jump to minute 5, skipping 2-4
	r.updateMinute(20, 5)
	assert.Equal(t, 10.0, r.Min())
	assert.Equal(t, 30.0, r.Max())
}

func TestRollingMinMax_WrapAround(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(10, 58)
	r.updateMinute(45, 59)
	// Wrap to minute 62 (bucket 2), clearing buckets 0 and 1
	r.updateMinute(30, 62)
	assert.Equal(t, 10.0, r.Min())
	assert.Equal(t, 45.0, r.Max())
}

func TestRollingMinMax_OldBucketsExpire(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(-5, 0)
	r.updateMinute(30, 30)
	// Minute 60 reuses bucket 0, dropping the -5 reading
	r.updateMinute(25, 60)
	assert.Equal(t, 25.0, r.Min())
	assert.Equal(t, 30.0, r.Max())
}

func TestRollingMinMax_GapOverAnHourClearsAll(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(100, 10)
	r.updateMinute(0, 11)
	r.updateMinute(22, 200)
	assert.Equal(t, 22.0, r.Min())
	assert.Equal(t, 22.0, r.Max())
}

func TestRollingMinMax_OutOfOrderFoldsIntoCurrent(t *testing.T) {
	r := NewRollingMinMax()
	r.updateMinute(10, 5)
	r.updateMinute(3, 4)
	assert.Equal(t, 3.0, r.Min())
	assert.Equal(t, 10.0, r.Max())
}

func TestRollingMinMax_UpdateAtUsesWallClockMinutes(t *testing.T) {
	r := NewRollingMinMax()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.UpdateAt(48, base)
	r.UpdateAt(2, base.Add(59*time.Second))
	r.UpdateAt(20, base.Add(2*time.Hour))
	assert.Equal(t, 20.0, r.Min())
	assert.Equal(t, 20.0, r.Max())
}

func TestRollingMinMax_HeldValueAfterHoursDropsRamp(t *testing.T) {
	r := NewRollingMinMax()
	base := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	for v := 0.0; v <= 50; v += 0.5 {
		r.UpdateAt(v, base)
	}
	require.Equal(t, 0.0, r.Min())
	require.Equal(t, 50.0, r.Max())

	r.UpdateAt(30, base.Add(3*time.Hour))
	assert.Equal(t, 30.0, r.Min())
	assert.Equal(t, 30.0, r.Max())
}

func TestRollingMinMax_HeldValueWithinHourKeepsRecentMinutes(t *testing.T) {
	r := NewRollingMinMax()
	base := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	r.UpdateAt(2, base)
	r.UpdateAt(48, base.Add(30*time.Minute))

	// Minute 0 falls out of the window, minute 30 stays
	r.UpdateAt(30, base.Add(61*time.Minute))
	assert.Equal(t, 30.0, r.Min())
	assert.Equal(t, 48.0, r.Max())
}
