package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lampcode-go/bus"
	"lampcode-go/types"
)

func TestBuildSkipsBadAlarms(t *testing.T) {
	s := &Service{Log: hclog.NewNullLogger(), Location: time.UTC}
	var fired []types.Command

	c, skipped := s.Build([]Alarm{
		{Name: "wake", Spec: "30 6 * * 1-5", Command: "animation sunrise:duration=20"},
		{Name: "night", Spec: "@daily", Command: "power off"},
		{Name: "typo", Spec: "61 * * * *", Command: "power off"},
		{Name: "junk", Spec: "@hourly", Command: "dance"},
	}, func(c types.Command) { fired = append(fired, c) })

	assert.Equal(t, 2, skipped)
	entries := c.Entries()
	require.Len(t, entries, 2)

	entries[0].Job.Run()
	require.Len(t, fired, 1)
	assert.Equal(t, []string{"cmnd", "animation"}, fired[0].Path)
	assert.Equal(t, "sunrise:duration=20", fired[0].Arg)
	assert.Equal(t, "schedule", fired[0].Source)
}

func TestDecodeAlarms(t *testing.T) {
	got, err := decodeAlarms([]any{map[string]any{"spec": "@daily", "command": "stop"}})
	require.NoError(t, err)
	assert.Equal(t, []Alarm{{Spec: "@daily", Command: "stop"}}, got)

	got, err = decodeAlarms(`[{"name":"x","spec":"* * * * *","command":"favorite"}]`)
	require.NoError(t, err)
	assert.Equal(t, "x", got[0].Name)

	_, err = decodeAlarms(42)
	assert.Error(t, err)
}

func TestServiceLoadsRetainedSchedule(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("schedule")
	conn.Publish(conn.NewMessage(topicConfigSchedule, []any{
		map[string]any{"spec": "* * * * *", "command": "power on"},
	}, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Service{Topic: bus.T("lamp", "cmnd")}
	require.NoError(t, s.Start(ctx, conn))
	// Nothing observable fires within a test's lifetime; the loop must just
	// survive config and shutdown.
	time.Sleep(20 * time.Millisecond)
	cancel()
}
