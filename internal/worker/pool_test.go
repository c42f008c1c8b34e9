package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsAllTasksBeforeStopReturns(t *testing.T) {
	p := NewPool(4, 16)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int64(100), n.Load())
}

func TestPool_SurvivesPanickingTask(t *testing.T) {
	p := NewPool(1, 4)
	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Stop()
	assert.True(t, ran.Load())
}

func TestPool_TrySubmitRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	var n atomic.Int64

	assert.True(t, p.TrySubmit(func() { close(started); <-release; n.Add(1) }))
	<-started
	assert.True(t, p.TrySubmit(func() { n.Add(1) }))
	assert.False(t, p.TrySubmit(func() { n.Add(1) }), "queue of one is already full")

	close(release)
	p.Stop()
	assert.Equal(t, int64(2), n.Load())
}

func TestPool_StopIsIdempotent(t *testing.T) {
	p := NewPool(2, 0)
	p.Stop()
	assert.NotPanics(t, p.Stop)
}
