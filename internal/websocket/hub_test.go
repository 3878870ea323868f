package websocket

import (
	"testing"
	"time"

	"tigaraksa-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	go hub.Run()
	defer hub.Shutdown()

	s := &Session{Id: uuid.New(), Send: make(chan []byte, 1)}
	assert.True(t, hub.add(s))
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, time.Millisecond)

	hub.remove(s)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, time.Millisecond)

	_, open := <-s.Send
	assert.False(t, open)
}

func TestHub_AddAfterShutdownFails(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	go hub.Run()
	hub.Shutdown()

	assert.False(t, hub.add(&Session{Id: uuid.New(), Send: make(chan []byte)}))
}
