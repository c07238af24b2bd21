package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeContains(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("closed range is half-open", func(t *testing.T) {
		r := TimeRange{From: from, Until: &until}
		assert.True(t, r.Contains(from), "start bound is inclusive")
		assert.True(t, r.Contains(from.Add(time.Hour)))
		assert.False(t, r.Contains(until), "end bound is exclusive")
		assert.False(t, r.Contains(from.Add(-time.Second)))
	})

	t.Run("open range has no end bound", func(t *testing.T) {
		r := TimeRange{From: from}
		assert.True(t, r.IsOpen())
		assert.True(t, r.Contains(from.AddDate(10, 0, 0)))
		assert.False(t, r.Contains(from.Add(-time.Second)))
	})
}

func TestTimeRangeOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
	}
	closed := func(fromDay, untilDay int) TimeRange {
		until := day(untilDay)
		return TimeRange{From: day(fromDay), Until: &until}
	}

	t.Run("intersecting closed ranges", func(t *testing.T) {
		assert.True(t, closed(1, 10).Overlaps(closed(5, 15)))
	})

	t.Run("touching boundaries do not overlap", func(t *testing.T) {
		assert.False(t, closed(1, 10).Overlaps(closed(10, 20)))
		assert.False(t, closed(10, 20).Overlaps(closed(1, 10)))
	})

	t.Run("disjoint ranges", func(t *testing.T) {
		assert.False(t, closed(1, 5).Overlaps(closed(10, 15)))
	})

	t.Run("open range overlaps anything not fully before it", func(t *testing.T) {
		open := TimeRange{From: day(10)}
		assert.True(t, open.Overlaps(closed(5, 15)))
		assert.True(t, open.Overlaps(TimeRange{From: day(20)}))
		assert.False(t, open.Overlaps(closed(1, 10)))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := closed(1, 10)
		b := TimeRange{From: day(5)}
		assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
	})
}
