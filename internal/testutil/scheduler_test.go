package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_FiresInDueOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string

	s.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	s.AfterFunc(time.Second, func() { got = append(got, "a") })
	s.AfterFunc(2*time.Second, func() { got = append(got, "c") })

	assert.Equal(t, 0, s.Advance(500*time.Millisecond))
	assert.Equal(t, 3, s.Advance(2*time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 2500*time.Millisecond, s.Now())
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler()
	fired := false

	stop := s.AfterFunc(time.Second, func() { fired = true })
	assert.Equal(t, 1, s.Pending())
	stop()
	stop()

	s.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_CallbackArmsTimer(t *testing.T) {
	s := NewManualScheduler()
	ticks := 0

	var tick func()
	tick = func() {
		ticks++
		s.AfterFunc(time.Second, tick)
	}
	s.AfterFunc(time.Second, tick)

	s.Advance(3 * time.Second)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 1, s.Pending())
}

func TestManualScheduler_FireNext(t *testing.T) {
	s := NewManualScheduler()
	assert.False(t, s.FireNext())

	fired := false
	s.AfterFunc(time.Hour, func() { fired = true })

	assert.True(t, s.FireNext())
	assert.True(t, fired)
	assert.Equal(t, time.Hour, s.Now())
}
