package models

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// WSMessage is the envelope for every message on a driver channel
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSErrorMessage is sent to a client when a message cannot be processed
type WSErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketClient tracks one connected driver channel
type WebSocketClient struct {
	DriverID string
	Conn     *websocket.Conn
}
