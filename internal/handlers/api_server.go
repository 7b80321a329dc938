// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/server"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the HTTP surface: the WebSocket transport, the room
// listing and a health probe. Every route goes through request logging.
func NewRouter(logger *logrus.Logger, d *server.Dispatcher) http.Handler {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/ws", logged(RoomWSHandler(logger, d)))
	mux.Handle("/rooms", logged(ListRoomsHandler(logger, d.Store())))
	mux.Handle("/healthz", HealthHandler(logger, d.Store(), d.Hub().Len))

	return mux
}
