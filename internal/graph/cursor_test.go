package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

func TestDayCursorWalksToFloor(t *testing.T) {
	t.Parallel()

	floor := base.AddDate(0, 0, -3)
	cursor := graph.NewDayCursor(base, floor)

	var days []core.Day
	for {
		day, ok := cursor.Next()
		if !ok {
			break
		}
		days = append(days, day)
	}

	require.Equal(t, []core.Day{
		core.DayOf(base),
		core.DayOf(base).Prev(),
		core.DayOf(base) - 2,
		core.DayOf(floor),
	}, days)
}

func TestDayCursorSameDay(t *testing.T) {
	t.Parallel()

	cursor := graph.NewDayCursor(base, base)

	day, ok := cursor.Next()
	require.True(t, ok)
	require.Equal(t, core.DayOf(base), day)

	_, ok = cursor.Next()
	require.False(t, ok)
}

func TestDayCursorStartBelowFloor(t *testing.T) {
	t.Parallel()

	cursor := graph.NewDayCursor(base, base.AddDate(0, 0, 2))

	_, ok := cursor.Next()
	require.False(t, ok)
}
