package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

// ObserverConfig configura el cliente del canal en vivo.
type ObserverConfig struct {
	URL         string
	Origin      string
	Token       string
	DialTimeout time.Duration
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	// OnState se invoca en cada transicion; err no es nil cuando el cierre fue por error.
	OnState func(state State, err error)
	OnEvent func(event domain.ProfileUpdated)
}

// Observer se conecta al feed de eventos y se reconecta con backoff exponencial hasta que ctx se cancele.
type Observer struct {
	cfg    ObserverConfig
	target string
	logger *zap.Logger
}

func NewObserver(cfg ObserverConfig, logger *zap.Logger) (*Observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("observer url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("observer url: unsupported scheme %q", u.Scheme)
	}
	target := u.String()
	if cfg.Token != "" {
		q := u.Query()
		q.Set("token", cfg.Token)
		u.RawQuery = q.Encode()
	}
	cfg.URL = u.String()
	if cfg.Origin == "" {
		origin := *u
		origin.Scheme = strings.Replace(u.Scheme, "ws", "http", 1)
		origin.Path = "/"
		origin.RawQuery = ""
		cfg.Origin = origin.String()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Observer{cfg: cfg, target: target, logger: logger}, nil
}

// Run bloquea hasta que ctx se cancele. Los errores de conexion nunca son fatales.
func (o *Observer) Run(ctx context.Context) error {
	backoff := o.cfg.MinBackoff
	for {
		opened, err := o.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			backoff = o.cfg.MinBackoff
		}
		o.logger.Debug("observer reconnecting", zap.Duration("backoff", backoff), zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
		if backoff > o.cfg.MaxBackoff {
			backoff = o.cfg.MaxBackoff
		}
	}
}

// session hace un ciclo Connecting -> Open -> Closed. opened indica si se llego a Open.
func (o *Observer) session(ctx context.Context) (opened bool, err error) {
	o.notify(StateConnecting, nil)

	conn, err := o.dial(ctx)
	if err != nil {
		o.notify(StateClosed, err)
		return false, err
	}
	o.notify(StateOpen, nil)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var event domain.ProfileUpdated
		if err := websocket.JSON.Receive(conn, &event); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				o.notify(StateClosed, nil)
				return true, nil
			}
			o.notify(StateClosed, err)
			return true, err
		}
		if o.cfg.OnEvent != nil {
			o.cfg.OnEvent(event)
		}
	}
}

func (o *Observer) dial(ctx context.Context) (*websocket.Conn, error) {
	wsCfg, err := websocket.NewConfig(o.cfg.URL, o.cfg.Origin)
	if err != nil {
		return nil, err
	}
	dialCtx, cancel := context.WithTimeout(ctx, o.cfg.DialTimeout)
	defer cancel()
	conn, err := wsCfg.DialContext(dialCtx)
	if err != nil {
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("dial %s: timeout: %w", o.target, err)
		}
		return nil, fmt.Errorf("dial %s: %w", o.target, err)
	}
	return conn, nil
}

func (o *Observer) notify(state State, err error) {
	if o.cfg.OnState != nil {
		o.cfg.OnState(state, err)
	}
}
