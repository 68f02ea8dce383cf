package handler

import (
	"net/http"

	"github.com/Sunny-pro22/Dashboard/internal/dto"
	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/service"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler handles dashboard viewers over WebSocket. A viewer
// first receives the current counters and gallery, then every update.
func ViewWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub := manager.GetWebsocketService()
		if hub == nil {
			http.Error(w, "Live feed disabled", http.StatusServiceUnavailable)
			return
		}

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		gallery := manager.GalleryData()
		if err := connection.WriteJSON(dto.DashboardUpdate{
			Type:     dto.UpdateCounters,
			Counters: manager.Counters(),
			Gallery:  &gallery,
		}); err != nil {
			logger.Error("Failed to send initial state: %v", err)
			connection.Close()
			return
		}

		if !hub.Register(connection) {
			connection.Close()
			return
		}
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Warning("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
