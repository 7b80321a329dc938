// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/protocol"
	"github.com/sirupsen/logrus"
)

// ListRoomsHandler serves the same listing as GET_ROOMS, wrapped in a RoomsList.
func ListRoomsHandler(logger *logrus.Logger, store *lobby.RoomStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(logger, w, http.StatusOK, protocol.RoomsList{Rooms: store.ListRooms()})
	}
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Clients int    `json:"clients"`
}

// HealthHandler reports liveness plus registry sizes.
func HealthHandler(logger *logrus.Logger, store *lobby.RoomStore, clients func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Rooms:   store.Len(),
			Clients: clients(),
		})
	}
}

func writeJSON(logger *logrus.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Warn("write json response")
	}
}
