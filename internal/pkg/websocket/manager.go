package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
)

// Manager manages driver WebSocket connections. Authentication happens at
// the edge; by the time a request reaches us the gateway has already set
// the X-Driver-ID header.
type Manager struct {
	sync.RWMutex
	clients  map[string]*models.WebSocketClient
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*models.WebSocketClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection identifies and upgrades a new driver connection, then
// hands it to the supplied handler for the lifetime of the connection
func (m *Manager) HandleConnection(c echo.Context, handleClient func(*models.WebSocketClient, *websocket.Conn) error) error {
	driverID := c.Request().Header.Get("X-Driver-ID")
	if driverID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "X-Driver-ID header is required")
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	client := &models.WebSocketClient{DriverID: driverID, Conn: ws}
	return handleClient(client, ws)
}

// AddClient safely adds a client to the manager
func (m *Manager) AddClient(client *models.WebSocketClient) {
	m.Lock()
	defer m.Unlock()
	m.clients[client.DriverID] = client
}

// RemoveClient safely removes a client from the manager
func (m *Manager) RemoveClient(driverID string) {
	m.Lock()
	defer m.Unlock()
	delete(m.clients, driverID)
}

// GetClient returns a client by driver ID
func (m *Manager) GetClient(driverID string) (*models.WebSocketClient, bool) {
	m.RLock()
	defer m.RUnlock()
	client, exists := m.clients[driverID]
	return client, exists
}

// NotifyClient sends an event to a connected driver, silently dropping the
// message if the driver is not connected
func (m *Manager) NotifyClient(driverID string, event string, data interface{}) {
	client, exists := m.GetClient(driverID)
	if !exists {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	client.Conn.WriteJSON(models.WSMessage{Event: event, Data: payload})
}

// SendErrorMessage reports a processing error back to the client
func (m *Manager) SendErrorMessage(conn *websocket.Conn, code, message string) error {
	payload, err := json.Marshal(models.WSErrorMessage{Code: code, Message: message})
	if err != nil {
		return err
	}
	return conn.WriteJSON(models.WSMessage{Event: constants.EventError, Data: payload})
}
