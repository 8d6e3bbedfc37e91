package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/logging"
)

// client is one WebSocket connection. writePump owns all writes to conn,
// readPump owns all reads.
type client struct {
	server     *Server
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
}

func (c *client) readPump() {
	defer func() {
		c.server.remove(c)
		_ = c.conn.Close()
		logging.LogFeedConnection(c.remoteAddr, "disconnected")
		c.server.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("Feed read error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		if messageType != websocket.TextMessage {
			logging.Debug("Ignoring non-text feed frame",
				zap.String("remote_addr", c.remoteAddr),
				zap.Int("type", messageType),
			)
			continue
		}

		logging.LogFeedMessage(c.remoteAddr, "in", data)
		c.reply(c.handle(data))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.server.wg.Done()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug("Feed write failed",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				return
			}
			logging.LogFeedMessage(c.remoteAddr, "out", data)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies one client action to the session
func (c *client) handle(data []byte) Reply {
	var action Action
	if err := json.Unmarshal(data, &action); err != nil {
		return Reply{Type: TypeError, Error: fmt.Sprintf("invalid message: %v", err)}
	}

	reply := Reply{Type: TypeAck, Action: action.Action, Device: action.Device}
	if err := c.apply(action); err != nil {
		reply.Type = TypeError
		reply.Error = err.Error()
	}
	return reply
}

func (c *client) apply(action Action) error {
	session := c.server.session

	switch action.Action {
	case ActionPower:
		if action.On == nil {
			return errors.New(`power requires "on"`)
		}
		return session.Toggle(action.Device, *action.On)

	case ActionColor:
		if action.Hex == "" {
			return errors.New(`color requires "hex"`)
		}
		return session.SetColor(action.Device, action.Hex)

	case ActionPoll:
		if action.Device == "" {
			session.PollAll()
			return nil
		}
		if !session.PollNow(action.Device) {
			return fmt.Errorf("device %q is not being polled", action.Device)
		}
		return nil

	default:
		return fmt.Errorf("unknown action %q", action.Action)
	}
}

func (c *client) reply(r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		logging.Error("Failed to encode feed reply", zap.Error(err))
		return
	}
	c.server.sendTo(c, data)
}
