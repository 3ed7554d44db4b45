// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// readPump читает служебные сообщения клиента и отвечает на ping
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.remove(c)
		c.Socket.Close()
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Warn("Соединение закрыто с ошибкой", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			hub.logger.Debug("Ошибка декодирования сообщения клиента", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}

		if msg.Type == MessagePing {
			hub.reply(c, Message{Type: MessagePong})
		}
	}
}
