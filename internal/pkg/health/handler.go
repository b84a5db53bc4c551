package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biyahe-app/biyahe/internal/pkg/database"
	natspkg "github.com/biyahe-app/biyahe/internal/pkg/nats"
)

// Checker verifies one dependency is reachable
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// NewPostgresChecker returns a checker that pings PostgreSQL
func NewPostgresChecker(client *database.PostgresClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping()
	})
}

// NewRedisChecker returns a checker that pings Redis
func NewRedisChecker(client *database.RedisClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx)
	})
}

// NewNATSChecker returns a checker that verifies the NATS connection
func NewNATSChecker(client *natspkg.Client) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if !client.IsConnected() {
			return ErrNotConnected
		}
		return nil
	})
}

// ErrNotConnected is returned when a transport reports itself down
var ErrNotConnected = echo.NewHTTPError(http.StatusServiceUnavailable, "not connected")

// Service aggregates dependency checkers
type Service struct {
	checkers map[string]Checker
}

// NewService creates an empty health service
func NewService() *Service {
	return &Service{checkers: make(map[string]Checker)}
}

// AddChecker registers a named dependency checker
func (s *Service) AddChecker(name string, c Checker) {
	s.checkers[name] = c
}

type statusResponse struct {
	Service string            `json:"service"`
	Version string            `json:"version"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RegisterEndpoints registers /health (liveness) and /health/ready
// (readiness, runs all dependency checks)
func RegisterEndpoints(e *echo.Echo, serviceName, version string, s *Service) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, statusResponse{
			Service: serviceName,
			Version: version,
			Status:  "ok",
		})
	})

	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string, len(s.checkers))
		healthy := true
		for name, checker := range s.checkers {
			if err := checker.Check(ctx); err != nil {
				checks[name] = err.Error()
				healthy = false
			} else {
				checks[name] = "ok"
			}
		}

		resp := statusResponse{
			Service: serviceName,
			Version: version,
			Status:  "ready",
			Checks:  checks,
		}
		if !healthy {
			resp.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	})
}
