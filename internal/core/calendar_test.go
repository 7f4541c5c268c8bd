package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarEvents(t *testing.T) {
	t.Run("Should end the event duration minutes after the start", func(t *testing.T) {
		start, err := time.Parse(time.RFC3339, "2024-05-01T10:00:00Z")
		require.NoError(t, err)

		events := CalendarEvents([]Training{{
			ID: 9, Activity: "Spinning", Duration: 60, Date: start,
			Customer: &CustomerRef{ID: 3, Firstname: "Anna", Lastname: "Aho"},
		}}, time.UTC)

		require.Len(t, events, 1)
		assert.Equal(t, "2024-05-01T11:00:00Z", events[0].End.Format(time.RFC3339))
		assert.Equal(t, "Spinning (Anna Aho)", events[0].Title)
		assert.Equal(t, int64(3), events[0].CustomerID)
		assert.Equal(t, time.Hour, events[0].Duration())
	})

	t.Run("Should title events without an owner by activity alone", func(t *testing.T) {
		events := CalendarEvents([]Training{{Activity: "Yoga", Duration: 30}}, time.UTC)
		assert.Equal(t, "Yoga", events[0].Title)
	})

	t.Run("Should express times in the given location", func(t *testing.T) {
		helsinki, err := time.LoadLocation("Europe/Helsinki")
		require.NoError(t, err)
		start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

		events := CalendarEvents([]Training{{Activity: "Gym", Duration: 45, Date: start}}, helsinki)
		assert.Equal(t, 13, events[0].Start.Hour())
		assert.True(t, events[0].Start.Equal(start))
	})
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []CalendarEvent{
		{ID: 1, Start: day1.Add(26 * time.Hour)},
		{ID: 2, Start: day1.Add(9 * time.Hour)},
		{ID: 3, Start: day1.Add(8 * time.Hour)},
	}

	days := GroupByDay(events)
	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Equal(day1))
	assert.Equal(t, []int64{3, 2}, []int64{days[0].Events[0].ID, days[0].Events[1].ID})
	assert.Equal(t, "Thu 02.05.2024", days[1].Label())
}

func TestActivityTotals(t *testing.T) {
	trainings := []Training{
		{Activity: "Gym", Duration: 60},
		{Activity: "Spinning", Duration: 45},
		{Activity: "Gym", Duration: 30},
		{Activity: "Zumba", Duration: 15},
	}

	totals := ActivityTotals(trainings)
	assert.Equal(t, []ActivityTotal{
		{Activity: "Gym", Minutes: 90, Sessions: 2},
		{Activity: "Spinning", Minutes: 45, Sessions: 1},
		{Activity: "Zumba", Minutes: 15, Sessions: 1},
	}, totals)
	assert.Equal(t, []int{100, 50, 16}, BarWidths(totals))
}

func TestActivityTotals_Empty(t *testing.T) {
	assert.Empty(t, ActivityTotals(nil))
	assert.Empty(t, BarWidths(nil))
}
