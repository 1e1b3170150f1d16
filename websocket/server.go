package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"collabo/messaging"
	"collabo/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenVerifier validates an access token and returns its claims.
// *middleware.Auth satisfies it.
type TokenVerifier interface {
	VerifyToken(token string) (*middleware.Claims, error)
}

// Server owns the duplex messaging endpoint: it verifies the handshake
// identity, registers the connection, and runs the per-connection
// pumps.
type Server struct {
	registry *messaging.Registry
	router   *messaging.Router
	verifier TokenVerifier
	log      zerolog.Logger
}

func NewServer(registry *messaging.Registry, router *messaging.Router, verifier TokenVerifier, log zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		router:   router,
		verifier: verifier,
		log:      log,
	}
}

// Handle upgrades GET /ws. The token is verified once at handshake;
// a bad token refuses the connection before the upgrade.
func (s *Server) Handle(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": "UNAUTHORIZED"})
		return
	}

	claims, err := s.verifier.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "UNAUTHORIZED"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(s, conn, claims.UserID)

	// Last writer wins: a fresh login displaces the previous channel,
	// and the displaced one is closed so the socket does not leak.
	if old := s.registry.Register(claims.UserID, client); old != nil {
		old.Close()
	}

	client.enqueue(envelope{Type: "connected", Payload: gin.H{"userId": claims.UserID}})

	go client.writePump()
	go client.readPump()
}
