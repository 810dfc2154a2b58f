package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyColor(t *testing.T) {
	cases := []struct {
		percentage int
		color      string
	}{
		{0, ColorNoCompletion},
		{1, ColorLow},
		{29, ColorLow},
		{30, ColorMid},
		{69, ColorMid},
		{70, ColorHigh},
		{100, ColorHigh},
	}

	for _, c := range cases {
		assert.Equal(t, c.color, ClassifyColor(c.percentage), "percentage %d", c.percentage)
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(0, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 100, Percentage(5, 5))
}

func TestSummarize(t *testing.T) {
	day := Day("2026-03-14")

	t.Run("two of three done", func(t *testing.T) {
		tasks := []Task{
			{Done: true},
			{Done: true},
			{Done: false},
		}
		h, ok := Summarize("u1", day, tasks)
		require.True(t, ok)
		assert.Equal(t, 3, h.Total)
		assert.Equal(t, 2, h.Completed)
		assert.Equal(t, 67, h.Percentage)
		assert.Equal(t, ColorMid, h.Color)
	})

	t.Run("nothing done", func(t *testing.T) {
		h, ok := Summarize("u1", day, []Task{{Done: false}})
		require.True(t, ok)
		assert.Equal(t, 0, h.Percentage)
		assert.Equal(t, ColorNoCompletion, h.Color)
	})

	t.Run("no tasks means nothing to archive", func(t *testing.T) {
		_, ok := Summarize("u1", day, nil)
		assert.False(t, ok)
	})
}

func TestDayArithmetic(t *testing.T) {
	d := Day("2026-03-01")
	assert.Equal(t, Day("2026-02-28"), d.Prev())
	assert.True(t, d.Prev().Before(d))
	assert.False(t, d.Before(d))

	parsed, err := ParseDay("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, Day("2026-12-31"), parsed)

	_, err = ParseDay("not-a-date")
	assert.Error(t, err)
}

func TestDayTime(t *testing.T) {
	d := Day("2026-03-15")
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d.Time(time.UTC))
}
