package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/wfiftyfour/graphrag/internal/app"
)

// ServerState is the handle shared by all requests: the loaded retrieval
// app plus the optional auth and queue wiring.
type ServerState struct {
	App   *app.App
	Queue *amqp091.Channel

	// Key verifies JWT bearer tokens when JWKS auth is configured.
	Key *keyfunc.Keyfunc
	// APIKey is the shared-secret alternative to JWT auth.
	APIKey string
}

// AuthEnabled reports whether any credential check is configured.
func (s *ServerState) AuthEnabled() bool {
	return s.Key != nil || s.APIKey != ""
}

type AppContext struct {
	echo.Context
	State *ServerState
}

func AppContextMiddleware(state *ServerState) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, state})
		}
	}
}
