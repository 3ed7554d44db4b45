// websocket/constants.go
package websocket

import (
	"time"
)

// Константы для WebSocket-соединения
const (
	// Время ожидания записи сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания сообщения от клиента
	pongWait = 60 * time.Second

	// Период отправки пинг-сообщений
	pingPeriod = (pongWait * 9) / 10

	// Клиенты панели присылают только служебные сообщения
	maxMessageSize = 4 * 1024

	// Очередь исходящих сообщений клиента
	sendBufferSize = 256
)

// Типы сообщений панели
const (
	MessageNewTransaction = "new_transaction"
	MessagePing           = "ping"
	MessagePong           = "pong"
)
