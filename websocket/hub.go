// websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewHub создает хаб WebSocket-соединений
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan envelope),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.clientCount.Store(0)
			h.logger.Info("Хаб остановлен")
			return

		case client := <-h.register:
			h.clients[client.ID] = client
			h.clientCount.Store(int64(len(h.clients)))
			h.logger.Info("Клиент подключился", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
				h.clientCount.Store(int64(len(h.clients)))
				h.logger.Info("Клиент отключился", zap.String("client_id", client.ID))
			}

		case message := <-h.broadcast:
			h.fanOut(message)

		case e := <-h.direct:
			if _, ok := h.clients[e.client.ID]; ok {
				select {
				case e.client.Send <- e.payload:
				default:
				}
			}
		}
	}
}

// fanOut отправляет сообщение всем клиентам; медленный клиент отключается
func (h *Hub) fanOut(message []byte) {
	h.broadcasted.Add(1)
	for id, client := range h.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, id)
			h.dropped.Add(1)
			h.logger.Warn("Клиент не успевает читать, соединение закрыто", zap.String("client_id", id))
		}
	}
	h.clientCount.Store(int64(len(h.clients)))
}

// BroadcastEvent рассылает событие типа messageType всем клиентам
func (h *Hub) BroadcastEvent(ctx context.Context, messageType string, data any) error {
	payload, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения %s: %w", messageType, err)
	}

	select {
	case h.broadcast <- payload:
		return nil
	case <-h.done:
		return fmt.Errorf("хаб остановлен")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS переводит запрос в WebSocket и подключает клиента к хабу
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Ошибка при установке WebSocket-соединения", zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		Socket: conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump(h.logger)
	go client.readPump(h)
}

// Stats возвращает текущие счетчики хаба
func (h *Hub) Stats() HubStats {
	return HubStats{
		Clients:   h.clientCount.Load(),
		Broadcast: h.broadcasted.Load(),
		Dropped:   h.dropped.Load(),
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// reply отправляет сообщение одному клиенту через хаб,
// так как только хаб закрывает канал Send
func (h *Hub) reply(client *Client, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case h.direct <- envelope{client: client, payload: payload}:
	case <-h.done:
	}
}
