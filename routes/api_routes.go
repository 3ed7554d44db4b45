// routes/api_routes.go
package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/LilVoxy/transactions_dwh/streaming"
	"github.com/LilVoxy/transactions_dwh/websocket"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// StatsSource отдает счетчики потребителя потока
type StatsSource interface {
	Stats() streaming.ConsumerStats
}

// StatusResponse - ответ /api/status
type StatusResponse struct {
	Status    string                  `json:"status"`
	StartedAt time.Time               `json:"started_at"`
	Hub       websocket.HubStats      `json:"hub"`
	Stream    streaming.ConsumerStats `json:"stream"`
}

// SetupRoutes настраивает маршруты панели мониторинга
func SetupRoutes(router *mux.Router, hub *websocket.Hub, stats StatsSource, staticDir string, logger *zap.Logger) {
	router.Use(CORSMiddleware)

	// WebSocket соединения
	router.HandleFunc("/ws", hub.ServeWS)

	// Состояние панели
	router.HandleFunc("/api/status", StatusHandler(hub, stats, time.Now().UTC(), logger)).Methods("GET", "OPTIONS")

	// Статические файлы
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
}

// StatusHandler возвращает счетчики хаба и потребителя
func StatusHandler(hub *websocket.Hub, stats StatsSource, startedAt time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Status:    "ok",
			StartedAt: startedAt,
			Hub:       hub.Stats(),
			Stream:    stats.Stats(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Ошибка при кодировании JSON", zap.Error(err))
		}
	}
}

// CORSMiddleware разрешает запросы панели с любого источника
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
