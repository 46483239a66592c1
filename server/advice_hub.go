package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fbascheper/wjax-from-spring-kafka-to-mutiny/domain"
)

// AdviceHub pushes every emitted advisory to connected websocket clients.
// It implements pipeline.AdviceSink; a slow or broken client is dropped, it
// never blocks the route path.
type AdviceHub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewAdviceHub returns an empty hub.
func NewAdviceHub(logger *zap.Logger) *AdviceHub {
	return &AdviceHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWebSocket upgrades the connection and registers the client until it
// disconnects.
func (h *AdviceHub) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", zap.Error(err))
		return
	}

	h.logger.Info("advice stream client connected", zap.String("client_ip", c.ClientIP()))

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	go h.pingRoutine(conn)

	// Drain control frames; the stream is one-directional.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

// SendAdvice broadcasts one advisory to every connected client.
func (h *AdviceHub) SendAdvice(advice domain.VehicleRouteChangeAdvice) error {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(advice); err != nil {
			h.logger.Warn("dropping advice stream client", zap.Error(err))
			h.drop(conn)
		}
	}
	return nil
}

func (h *AdviceHub) pingRoutine(conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *AdviceHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if present {
		_ = conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *AdviceHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
