package realtime

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

var (
	ErrSubscriberTooSlow = errors.New("subscriber buffer full")
	ErrHubClosed         = errors.New("hub closed")
)

// State es el estado de conexion de un observador.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const defaultSubscriberBuffer = 64

// Hub reparte eventos ProfileUpdated a todas las suscripciones abiertas, en orden de publicacion.
// Sin replay: una suscripcion solo ve lo publicado despues de quedar Open.
type Hub struct {
	mu          sync.Mutex
	logger      *zap.Logger
	buffer      int
	subscribers map[*Subscription]struct{}
	closed      bool
}

func NewHub(logger *zap.Logger, buffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		logger:      logger,
		buffer:      buffer,
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Subscribe registra un observador nuevo. Si el hub ya cerro, la suscripcion nace cerrada con ErrHubClosed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		hub:    h,
		events: make(chan domain.ProfileUpdated, h.buffer),
		done:   make(chan struct{}),
		state:  StateConnecting,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.finish(ErrHubClosed)
		return sub
	}
	h.subscribers[sub] = struct{}{}
	sub.setState(StateOpen)
	return sub
}

// Publish entrega el evento a cada suscripcion abierta. Una suscripcion con el buffer lleno
// se cierra con ErrSubscriberTooSlow: nunca sigue abierta con un hueco.
func (h *Hub) Publish(event domain.ProfileUpdated) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			delete(h.subscribers, sub)
			sub.finish(ErrSubscriberTooSlow)
			h.logger.Warn("dropping slow subscriber", zap.Int("buffer", h.buffer))
		}
	}
}

// Count devuelve cuantas suscripciones siguen abiertas.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close cierra todas las suscripciones y rechaza las nuevas.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		sub.finish(nil)
	}
}

func (h *Hub) remove(sub *Subscription, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
	sub.finish(err)
}

// Subscription es el registro de un observador en el hub.
// Events se cierra cuando la suscripcion pasa a Closed; los eventos ya encolados se pueden drenar.
type Subscription struct {
	hub    *Hub
	events chan domain.ProfileUpdated
	done   chan struct{}

	mu    sync.Mutex
	state State
	err   error
}

func (s *Subscription) Events() <-chan domain.ProfileUpdated {
	return s.events
}

// Done se cierra cuando la suscripcion queda Closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err devuelve el error que cerro la suscripcion, o nil si se cerro normalmente.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close desregistra la suscripcion. Idempotente.
func (s *Subscription) Close() {
	s.hub.remove(s, nil)
}

// Fail cierra la suscripcion registrando el error de transporte.
func (s *Subscription) Fail(err error) {
	s.hub.remove(s, err)
}

func (s *Subscription) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// finish se llama con h.mu tomado, asi Publish nunca escribe sobre un canal cerrado.
func (s *Subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.err = err
	close(s.events)
	close(s.done)
}
