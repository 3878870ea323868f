package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/pkg/serverutils"
	"tigaraksa-chat-be/internal/service"
	"tigaraksa-chat-be/pkg/rag/payload"
	"tigaraksa-chat-be/pkg/rag/persona"
	"tigaraksa-chat-be/pkg/rag/pipeline"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Session is one chat websocket. Turns on a session run one at a time.
type Session struct {
	Id   uuid.UUID
	Hub  *Hub
	Conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan []byte

	chat   service.IChatService
	logger logger.ILogger

	done     chan struct{}
	doneOnce sync.Once
}

// ServeChat runs a session until the peer disconnects.
func ServeChat(hub *Hub, conn *websocket.Conn, chat service.IChatService, log logger.ILogger) {
	s := &Session{
		Id:     uuid.New(),
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		chat:   chat,
		logger: log,
		done:   make(chan struct{}),
	}
	if !hub.add(s) {
		conn.Close()
		return
	}

	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer func() {
		s.Hub.remove(s)
		s.Conn.Close()
	}()
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("ChatSocket", "Unexpected close", map[string]interface{}{"session_id": s.Id, "error": err.Error()})
			}
			return
		}

		if !s.handleTurn(raw) {
			return
		}
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// handleTurn answers one request frame. It returns false once the peer is gone.
func (s *Session) handleTurn(raw []byte) bool {
	var req dto.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return s.sendFrame(dto.ChatFrame{Type: dto.FrameError, Data: "Invalid request body"})
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return s.sendFrame(dto.ChatFrame{Type: dto.FrameError, Data: err.Error()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fragments, err := s.chat.Chat(ctx, &req)
	if err != nil {
		return s.sendFrame(dto.ChatFrame{Type: dto.FrameError, Data: turnErrorText(err)})
	}

	for fragment := range fragments {
		for _, frame := range FramesFor(fragment) {
			if !s.sendFrame(frame) {
				return false
			}
		}
	}
	return s.sendFrame(dto.ChatFrame{Type: dto.FrameDone})
}

// FramesFor splits a fragment carrying the image payload into an images frame
// plus any surrounding text. Other fragments pass through unchanged.
func FramesFor(fragment string) []dto.ChatFrame {
	items, rest, found, err := payload.Split(fragment)
	if !found || err != nil {
		return []dto.ChatFrame{{Type: dto.FrameFragment, Data: fragment}}
	}

	images := make([]dto.ImageFrameDTO, len(items))
	for i, it := range items {
		images[i] = dto.ImageFrameDTO{
			Id:        it.Id,
			URL:       it.URL,
			Prompt:    it.Prompt,
			Caption:   it.Caption,
			OcrText:   it.OcrText,
			ClipScore: it.ClipScore,
		}
	}

	frames := []dto.ChatFrame{{Type: dto.FrameImages, Images: images}}
	if strings.TrimSpace(rest) != "" {
		frames = append(frames, dto.ChatFrame{Type: dto.FrameFragment, Data: rest})
	}
	return frames
}

func turnErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrChatDisabled):
		return pipeline.MsgChatDisabled
	case errors.Is(err, persona.ErrUnknownRole):
		return "Invalid role. Must be one of: " + strings.Join(persona.Labels, ", ")
	default:
		return "Internal server error"
	}
}

func (s *Session) sendFrame(frame dto.ChatFrame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("ChatSocket", "Failed to marshal frame", map[string]interface{}{"error": err.Error()})
		return true
	}
	select {
	case s.Send <- data:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.doneOnce.Do(func() { close(s.done) })
		s.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
