// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Subprotocol is the only WebSocket subprotocol the room endpoint speaks.
const Subprotocol = "uno"

// Custom WebSocket close codes used by the room endpoint.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client did not negotiate the uno subprotocol.
	BadFrameError       websocket.StatusCode = 3001 // A frame was not a valid envelope.
	ShutdownError       websocket.StatusCode = 3002 // Server is going away.
)
