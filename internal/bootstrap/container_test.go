package bootstrap

import (
	"testing"

	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/websocket"
	pktNats "tigaraksa-chat-be/pkg/nats"

	"github.com/stretchr/testify/assert"
)

type syncCountingLogger struct {
	logger.ILogger
	syncs int
}

func (l *syncCountingLogger) Sync() error {
	l.syncs++
	return nil
}

func TestContainerClose_FlushesBothLoggers(t *testing.T) {
	nop := logger.NewNopLogger()
	appLog := &syncCountingLogger{ILogger: nop}
	socket := &syncCountingLogger{ILogger: nop}

	closed := 0
	c := &Container{
		WebSocketHub: websocket.NewHub(nop),
		Logger:       appLog,
		SocketLogger: socket,
		Publisher:    pktNats.NoopPublisher{},
		closers:      []func(){func() { closed++ }},
	}

	c.Close()

	assert.Equal(t, 1, appLog.syncs)
	assert.Equal(t, 1, socket.syncs)
	assert.Equal(t, 1, closed)
}
