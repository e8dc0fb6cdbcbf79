package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastFanOut(t *testing.T) {
	source := make(chan int)
	srv := NewBroadcastServer("test", "numbers", source)
	defer srv.Close()

	first := srv.Subscribe()
	second := srv.Subscribe()

	source <- 42

	assert.Equal(t, 42, <-first)
	assert.Equal(t, 42, <-second)
}

func TestBroadcastCancelSubscription(t *testing.T) {
	source := make(chan int)
	srv := NewBroadcastServer("test", "numbers", source)
	defer srv.Close()

	keep := srv.Subscribe()
	dropped := srv.Subscribe()

	srv.CancelSubscription(dropped)
	_, ok := <-dropped
	assert.False(t, ok, "canceled subscription must be closed")

	source <- 7
	assert.Equal(t, 7, <-keep)
}

func TestBroadcastClose(t *testing.T) {
	source := make(chan int)
	srv := NewBroadcastServer("test", "numbers", source)

	sub := srv.Subscribe()

	srv.Close()
	// safe to call again
	srv.Close()

	_, ok := <-sub
	assert.False(t, ok, "close must close all subscriber channels")
}
