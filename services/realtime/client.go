package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ambulink/models"
	"ambulink/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Inbound socket messages.
const (
	MessageJoinRoom       = "joinRoom"
	MessageLeaveRoom      = "leaveRoom"
	MessageUpdateLocation = "updateLocation"
	messageError          = "error"
)

// ClientMessage is a message sent by a connected client.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one authenticated socket connection.
type Client struct {
	ID    string
	Actor models.Actor
	Send  chan []byte

	// rooms is guarded by the hub mutex.
	rooms map[string]struct{}
}

// NewClient creates an unregistered client for actor.
func NewClient(actor models.Actor) *Client {
	return &Client{
		ID:    uuid.New().String(),
		Actor: actor,
		Send:  make(chan []byte, sendBuffer),
		rooms: make(map[string]struct{}),
	}
}

// HandleMessage applies one inbound message on behalf of client.
func (h *Hub) HandleMessage(ctx context.Context, client *Client, raw []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return utils.NewValidationError("malformed message")
	}

	switch msg.Event {
	case MessageJoinRoom, MessageLeaveRoom:
		var room string
		if err := json.Unmarshal(msg.Data, &room); err != nil || room == "" {
			return utils.NewValidationError("room must be a non-empty string")
		}
		if msg.Event == MessageLeaveRoom {
			h.Leave(client, room)
			return nil
		}
		return h.Join(ctx, client, room)

	case MessageUpdateLocation:
		if !client.Actor.IsDriver() {
			return utils.NewAuthorizationError("only drivers can share their location")
		}
		var loc models.Coordinates
		if err := json.Unmarshal(msg.Data, &loc); err != nil {
			return utils.NewValidationError("invalid location")
		}
		h.mu.RLock()
		locator := h.locator
		h.mu.RUnlock()
		if locator == nil {
			return nil
		}
		return locator.UpdateLocation(ctx, client.Actor, loc)
	}
	return utils.NewValidationError("unknown event %q", msg.Event)
}

// Serve registers the connection and pumps messages until it closes.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, actor models.Actor) {
	client := NewClient(actor)
	h.Register(client)
	logger := utils.GetLogger().With(zap.String("clientId", client.ID), zap.String("userId", actor.ID))
	logger.Debug("websocket client connected")

	go h.writePump(client, conn)
	h.readPump(ctx, client, conn, logger)
	logger.Debug("websocket client disconnected")
}

func (h *Hub) readPump(ctx context.Context, client *Client, conn *websocket.Conn, logger *zap.Logger) {
	defer func() {
		h.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if err := h.HandleMessage(ctx, client, raw); err != nil {
			h.replyError(client, err)
		}
	}
}

func (h *Hub) writePump(client *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// replyError queues an error frame to the client only.
func (h *Hub) replyError(client *Client, err error) {
	message := "request failed"
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	data, _ := json.Marshal(models.Event{
		Name:    messageError,
		Payload: map[string]string{"message": message},
		At:      time.Now(),
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.all[client]; !ok {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}
