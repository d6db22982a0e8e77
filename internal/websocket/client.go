package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// ChatHandler receives decoded chat frames and room joins from clients.
// The concrete implementation lives above this package so the hub stays
// free of persistence and provider concerns.
type ChatHandler interface {
	HandleJoinRoom(ctx context.Context, client *Client, roomID uint) error
	HandleChatMessage(ctx context.Context, client *Client, frame *Frame)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Authenticated identity for this connection.
	UserID   uint
	Username string

	// Buffered channel of outbound events.
	Send chan Event

	handler ChatHandler

	// Cancelled on disconnect so in-flight AI turns stop with the client.
	// Send is never closed; the write pump exits on this context instead,
	// so a late Deliver from the read pump can never hit a closed channel.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient builds a connection handle. The pumps are started by ServeWs;
// a client without running pumps is still a valid hub subscriber.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint, username string, handler ChatHandler) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:      hub,
		Conn:     conn,
		UserID:   userID,
		Username: username,
		Send:     make(chan Event, 256),
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ServeWs handles one websocket connection until the peer goes away.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uint, username string, handler ChatHandler) {
	client := NewClient(hub, conn, userID, username, handler)
	client.Hub.register <- client
	client.Hub.Subscribe(RoomListKey, client)

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}

// Context is cancelled when the connection closes.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Close cancels the client's context, taking any in-flight AI turn and
// the write pump with it.
func (c *Client) Close() {
	c.cancel()
}

// Deliver queues an event for this client only. Events for a client that
// was already dropped are discarded.
func (c *Client) Deliver(event Event) {
	if c.ctx.Err() != nil {
		return
	}
	select {
	case c.Send <- event:
	default:
		c.Hub.unregister <- c
	}
}

// readPump pumps messages from the websocket connection to the dispatcher.
func (c *Client) readPump() {
	defer func() {
		c.Close()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	if strings.TrimSpace(string(data)) == "" {
		c.Deliver(NewErrorEvent("빈 메시지는 처리할 수 없습니다."))
		return
	}

	frame, err := DecodeFrame(data)
	if err != nil {
		c.Deliver(NewErrorEvent("잘못된 형식의 메시지입니다. JSON 형식으로 보내주세요."))
		return
	}

	switch {
	case frame.Type == FrameJoinRoom:
		if err := c.handler.HandleJoinRoom(c.ctx, c, frame.RoomID); err != nil {
			c.Deliver(NewErrorEvent(err.Error()))
		}

	case frame.Type == FrameParticipantsUpdate:
		// Roster updates go back to the sender only.
		c.Deliver(RawEvent(frame.Raw))

	case frame.IsSignaling():
		// Mirrored verbatim to the whole room, sender included.
		c.Hub.Broadcast(RoomKey(frame.RoomID), RawEvent(frame.Raw))

	case frame.IsChat():
		if !frame.HasContent() {
			c.Deliver(NewErrorEvent("메시지와 이미지가 모두 비어 있습니다."))
			return
		}
		c.handler.HandleChatMessage(c.ctx, c, frame)

	default:
		c.Hub.logger.Warn("Hub", "Unknown frame type", map[string]interface{}{"user_id": c.UserID, "type": frame.Type})
	}
}

// writePump pumps events from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case event := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := encodeEvent(event)
			if err != nil {
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeEvent(event Event) ([]byte, error) {
	if raw, ok := event.(RawEvent); ok {
		return []byte(raw), nil
	}
	return json.Marshal(event)
}
