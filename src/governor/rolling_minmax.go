package governor

import (
	"math"
	"time"
)

// minMaxBucket holds min/max voltage for a single minute
type minMaxBucket struct {
	min, max float64
}

func emptyBucket() minMaxBucket {
	return minMaxBucket{min: math.MaxFloat64, max: -math.MaxFloat64}
}

// RollingMinMax tracks the voltage range over a rolling 1-hour window using 60 1-minute buckets.
// Buckets are keyed by absolute minute so a gap of an hour or more clears everything.
type RollingMinMax struct {
	buckets    [60]minMaxBucket
	lastMinute int64 // minutes since epoch, -1 = uninitialized
}

// NewRollingMinMax creates a new RollingMinMax with all buckets initialized to sentinel values
func NewRollingMinMax() RollingMinMax {
	r := RollingMinMax{lastMinute: -1}
	for i := range r.buckets {
		r.buckets[i] = emptyBucket()
	}
	return r
}

// Update records a value at the current time
func (r *RollingMinMax) Update(value float64) {
	r.UpdateAt(value, time.Now())
}

// UpdateAt records a value at the given time. Times older than the last update are folded into the current bucket.
func (r *RollingMinMax) UpdateAt(value float64, at time.Time) {
	r.updateMinute(value, at.Unix()/60)
}

func (r *RollingMinMax) updateMinute(value float64, minute int64) {
	if r.lastMinute >= 0 && minute < r.lastMinute {
		minute = r.lastMinute
	}

	if r.lastMinute >= 0 && minute != r.lastMinute {
		gap := minute - r.lastMinute
		if gap >= int64(len(r.buckets)) {
			for i := range r.buckets {
				r.buckets[i] = emptyBucket()
			}
		} else {
			for m := r.lastMinute + 1; m < minute; m++ {
				r.buckets[m%60] = emptyBucket()
			}
		}
	}

	idx := minute % 60
	if minute != r.lastMinute {
		r.buckets[idx] = minMaxBucket{min: value, max: value}
		r.lastMinute = minute
		return
	}

	b := &r.buckets[idx]
	b.min = min(b.min, value)
	b.max = max(b.max, value)
}

// Empty reports whether no value is held in the window
func (r *RollingMinMax) Empty() bool {
	return r.lastMinute < 0
}

// Min returns the minimum value across all buckets, or 0 if no data
func (r *RollingMinMax) Min() float64 {
	result := math.MaxFloat64
	for _, b := range r.buckets {
		result = min(result, b.min)
	}
	if result == math.MaxFloat64 {
		return 0
	}
	return result
}

// Max returns the maximum value across all buckets, or 0 if no data
func (r *RollingMinMax) Max() float64 {
	result := -math.MaxFloat64
	for _, b := range r.buckets {
		result = max(result, b.max)
	}
	if result == -math.MaxFloat64 {
		return 0
	}
	return result
}
