package availability

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtslot/internal/center"
)

var testDate = time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)

func TestGenerateSlots_StepNotDuration(t *testing.T) {
	intervals := []center.Interval{{Start: "09:00", End: "11:00"}}

	slots := slices.Collect(GenerateSlots(intervals, testDate, 60, 30, time.UTC))

	// Starts at 09:00, 09:30, 10:00 — candidates overlap by design.
	require.Len(t, slots, 3)
	assert.Equal(t, time.Date(2025, 12, 22, 9, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC), slots[0].End)
	assert.Equal(t, time.Date(2025, 12, 22, 9, 30, 0, 0, time.UTC), slots[1].Start)
	assert.Equal(t, time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC), slots[2].Start)
}

func TestGenerateSlots_SlotMustFitInterval(t *testing.T) {
	intervals := []center.Interval{{Start: "09:00", End: "10:30"}}

	slots := slices.Collect(GenerateSlots(intervals, testDate, 60, 30, time.UTC))

	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, 12, 22, 10, 30, 0, 0, time.UTC), slots[1].End)
}

func TestGenerateSlots_IntervalShorterThanDuration(t *testing.T) {
	intervals := []center.Interval{{Start: "09:00", End: "09:45"}}

	slots := slices.Collect(GenerateSlots(intervals, testDate, 60, 30, time.UTC))
	assert.Empty(t, slots)
}

func TestGenerateSlots_MultipleIntervals(t *testing.T) {
	intervals := []center.Interval{
		{Start: "09:00", End: "10:00"},
		{Start: "18:00", End: "19:00"},
	}

	slots := slices.Collect(GenerateSlots(intervals, testDate, 60, 30, time.UTC))

	require.Len(t, slots, 2)
	assert.Equal(t, 9, slots[0].Start.Hour())
	assert.Equal(t, 18, slots[1].Start.Hour())
}

func TestGenerateSlots_NoIntervals(t *testing.T) {
	assert.Empty(t, slices.Collect(GenerateSlots(nil, testDate, 60, 30, time.UTC)))
}

func TestGenerateSlots_InvalidParams(t *testing.T) {
	intervals := []center.Interval{{Start: "09:00", End: "12:00"}}

	assert.Empty(t, slices.Collect(GenerateSlots(intervals, testDate, 0, 30, time.UTC)))
	assert.Empty(t, slices.Collect(GenerateSlots(intervals, testDate, 60, 0, time.UTC)))
}

func TestGenerateSlots_LazyStopsOnBreak(t *testing.T) {
	intervals := []center.Interval{{Start: "08:00", End: "22:00"}}

	var got []Slot
	for slot := range GenerateSlots(intervals, testDate, 60, 30, time.UTC) {
		got = append(got, slot)
		if len(got) == 2 {
			break
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, 8, got[0].Start.Hour())
}

func TestGenerateSlots_Restartable(t *testing.T) {
	intervals := []center.Interval{{Start: "08:00", End: "22:00"}}

	seq := GenerateSlots(intervals, testDate, 90, 30, time.UTC)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}
