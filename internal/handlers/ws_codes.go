package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes sent to joiners that were upgraded but cannot
// take a seat.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected without the skat subprotocol.
	TableFullError      websocket.StatusCode = 3001 // Both remote seats were taken while this client upgraded.
	GameOverError       websocket.StatusCode = 3002 // The table no longer accepts players.
)
