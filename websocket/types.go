// websocket/types.go
package websocket

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message - конверт сообщения, отправляемого клиентам панели
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client - подключенный браузер панели мониторинга
type Client struct {
	ID     string
	Socket *websocket.Conn
	Send   chan []byte
}

// HubStats - счетчики хаба
type HubStats struct {
	Clients   int64 `json:"clients"`
	Broadcast int64 `json:"broadcast"`
	Dropped   int64 `json:"dropped"`
}

// envelope - сообщение для одного клиента
type envelope struct {
	client  *Client
	payload []byte
}

// Hub рассылает события всем подключенным клиентам.
// Карта клиентов принадлежит горутине Run.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	direct     chan envelope
	done       chan struct{}
	logger     *zap.Logger

	clientCount atomic.Int64
	broadcasted atomic.Int64
	dropped     atomic.Int64
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Панель открывается с любого источника
	},
}
