package handler

import (
	"context"
	"encoding/json"
	"errors"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/internal/pkg/constants"
	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/models"
	"github.com/biyahe-app/biyahe/internal/pkg/websocket"
	"github.com/biyahe-app/biyahe/services/location"
	"github.com/biyahe-app/biyahe/services/presence"
)

// DriverChannelHandler owns the driver WebSocket channel. Presence and
// location share one connection: going online arms the presence lease,
// every inbound message refreshes it, and a dropped connection writes the
// driver offline without waiting for the lease to expire.
type DriverChannelHandler struct {
	presenceUC presence.PresenceUC
	locationUC location.LocationUC
	manager    *websocket.Manager
}

// NewDriverChannelHandler creates a new driver channel handler
func NewDriverChannelHandler(presenceUC presence.PresenceUC, locationUC location.LocationUC, manager *websocket.Manager) *DriverChannelHandler {
	return &DriverChannelHandler{
		presenceUC: presenceUC,
		locationUC: locationUC,
		manager:    manager,
	}
}

// RegisterRoutes registers the driver channel endpoint
func (h *DriverChannelHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/driver", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and runs the message loop
func (h *DriverChannelHandler) HandleWebSocket(c echo.Context) error {
	return h.manager.HandleConnection(c, h.handleClient)
}

type goOnlinePayload struct {
	Location models.GeoPoint `json:"location"`
}

type publishModePayload struct {
	Mode models.PublishMode `json:"mode"`
}

func (h *DriverChannelHandler) handleClient(client *models.WebSocketClient, conn *gorilla.Conn) error {
	h.manager.AddClient(client)
	defer h.manager.RemoveClient(client.DriverID)
	defer h.closeDriver(client.DriverID)

	logger.Info("Driver channel opened", logger.String("driver_id", client.DriverID))

	for {
		var msg models.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Read failure is the fast disconnect path; the deferred
			// offline write beats the lease to it
			logger.Info("Driver channel closed",
				logger.String("driver_id", client.DriverID),
				logger.Err(err))
			return nil
		}

		if err := h.handleMessage(client, conn, msg); err != nil {
			logger.Warn("Driver message failed",
				logger.String("driver_id", client.DriverID),
				logger.String("event", msg.Event),
				logger.Err(err))
		}
	}
}

func (h *DriverChannelHandler) handleMessage(client *models.WebSocketClient, conn *gorilla.Conn, msg models.WSMessage) error {
	ctx := context.Background()

	// Any message proves the connection is alive
	if msg.Event != constants.EventGoOnline {
		_ = h.presenceUC.Touch(ctx, client.DriverID)
	}

	switch msg.Event {
	case constants.EventGoOnline:
		var payload goOnlinePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, "invalid go_online payload")
		}
		if err := h.presenceUC.GoOnline(ctx, client.DriverID, payload.Location); err != nil {
			if errors.Is(err, presence.ErrAlreadyOnline) {
				return nil
			}
			return h.manager.SendErrorMessage(conn, constants.ErrorInternal, err.Error())
		}
		return nil

	case constants.EventGoOffline:
		if err := h.presenceUC.GoOffline(ctx, client.DriverID); err != nil && !errors.Is(err, presence.ErrNotOnline) {
			return h.manager.SendErrorMessage(conn, constants.ErrorInternal, err.Error())
		}
		return h.locationUC.ClearDriver(ctx, client.DriverID)

	case constants.EventHeartbeat:
		// Touch above already renewed the lease
		return nil

	case constants.EventLocationUpdate:
		var fix models.Fix
		if err := json.Unmarshal(msg.Data, &fix); err != nil {
			return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, "invalid location payload")
		}
		// Fixes from a driver who never went online are dropped
		online, err := h.presenceUC.IsOnline(ctx, client.DriverID)
		if err != nil {
			return err
		}
		if !online {
			return h.manager.SendErrorMessage(conn, constants.ErrorNotOnline, "go online before publishing fixes")
		}
		if _, err := h.locationUC.Publish(ctx, client.DriverID, fix); err != nil {
			if errors.Is(err, location.ErrInvalidFix) {
				return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, err.Error())
			}
			return err
		}
		return nil

	case constants.EventPublishMode:
		var payload publishModePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, "invalid publish_mode payload")
		}
		if err := h.locationUC.SetPublishMode(client.DriverID, payload.Mode); err != nil {
			return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, err.Error())
		}
		return nil

	default:
		return h.manager.SendErrorMessage(conn, constants.ErrorInvalidFormat, "unknown event")
	}
}

// closeDriver converges presence and location state after the channel
// drops, whether or not the client said goodbye
func (h *DriverChannelHandler) closeDriver(driverID string) {
	ctx := context.Background()
	if err := h.presenceUC.GoOffline(ctx, driverID); err != nil && !errors.Is(err, presence.ErrNotOnline) {
		logger.Warn("Failed to write driver offline on disconnect",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}
	if err := h.locationUC.ClearDriver(ctx, driverID); err != nil {
		logger.Warn("Failed to clear driver location on disconnect",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}
}
