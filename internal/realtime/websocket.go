package realtime

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	maxIncomingFrame    = 4 << 10
)

var pingCodec = websocket.Codec{
	Marshal: func(any) ([]byte, byte, error) {
		return nil, websocket.PingFrame, nil
	},
}

// WSHandler expone el hub por websocket: un JSON por evento, solo servidor -> cliente.
type WSHandler struct {
	hub          *Hub
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
}

func NewWSHandler(hub *Hub, logger *zap.Logger, pingInterval time.Duration) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &WSHandler{
		hub:          hub,
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: defaultWriteTimeout,
	}
}

// ServeHTTP no valida Origin: los clientes del dashboard pueden venir de cualquier host (CORS abierto).
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Server{Handler: h.serve}.ServeHTTP(w, r)
}

func (h *WSHandler) serve(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	conn.MaxPayloadBytes = maxIncomingFrame

	sub := h.hub.Subscribe()
	defer sub.Close()

	remote := ""
	if req := conn.Request(); req != nil {
		remote = req.RemoteAddr
	}
	h.logger.Info("observer connected", zap.String("remote", remote), zap.Int("observers", h.hub.Count()))

	go h.discardIncoming(conn, sub)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				h.logClosed(remote, sub.Err())
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := websocket.JSON.Send(conn, event); err != nil {
				sub.Fail(err)
				h.logClosed(remote, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := pingCodec.Send(conn, nil); err != nil {
				sub.Fail(err)
				h.logClosed(remote, err)
				return
			}
		}
	}
}

// discardIncoming lee y descarta lo que mande el cliente; cualquier error de lectura cierra al observador.
func (h *WSHandler) discardIncoming(conn *websocket.Conn, sub *Subscription) {
	var discard []byte
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			if errors.Is(err, io.EOF) {
				sub.Close()
				return
			}
			sub.Fail(err)
			return
		}
	}
}

func (h *WSHandler) logClosed(remote string, err error) {
	if err != nil {
		h.logger.Info("observer closed with error", zap.String("remote", remote), zap.Error(err))
		return
	}
	h.logger.Info("observer closed", zap.String("remote", remote))
}
