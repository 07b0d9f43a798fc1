package intro_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/intro"
	"finitefield.org/elarion-web/internal/intro/introtest"
)

func TestSequenceHidesExactlyOnceAfterDelay(t *testing.T) {
	clock := &introtest.Clock{}
	hides := 0
	seq := intro.Start(clock, intro.DefaultDelay, func() { hides++ })

	require.True(t, seq.Visible())
	clock.Advance(2499 * time.Millisecond)
	require.True(t, seq.Visible(), "must not hide before the delay")
	require.Zero(t, hides)

	clock.Advance(time.Millisecond)
	require.Equal(t, intro.Hidden, seq.State())
	require.Equal(t, 1, hides)

	clock.Advance(time.Hour)
	require.Equal(t, intro.Hidden, seq.State())
	require.Equal(t, 1, hides)
	require.Zero(t, clock.Pending())
}

func TestStopCancelsPendingTransition(t *testing.T) {
	clock := &introtest.Clock{}
	hides := 0
	seq := intro.Start(clock, time.Second, func() { hides++ })

	require.True(t, seq.Stop())
	require.False(t, seq.Stop())
	clock.Advance(time.Minute)

	require.Zero(t, hides)
	require.True(t, seq.Visible())
}

func TestStopAfterHideReportsNothingPending(t *testing.T) {
	clock := &introtest.Clock{}
	seq := intro.Start(clock, time.Second, nil)
	clock.Advance(time.Second)
	require.False(t, seq.Stop())
}

func TestNonPositiveDelayUsesDefault(t *testing.T) {
	clock := &introtest.Clock{}
	seq := intro.Start(clock, 0, nil)
	clock.Advance(intro.DefaultDelay - time.Nanosecond)
	require.True(t, seq.Visible())
	clock.Advance(time.Nanosecond)
	require.False(t, seq.Visible())
}

func TestSystemClockFires(t *testing.T) {
	done := make(chan struct{})
	seq := intro.Start(intro.SystemClock, 5*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("intro never hid")
	}
	require.Equal(t, "hidden", seq.State().String())
}
