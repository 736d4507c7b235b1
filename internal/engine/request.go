package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/specialization"
)

// ErrUnknownRequest is returned by Apply for a request kind it does not handle.
var ErrUnknownRequest = errors.New("engine: unknown request")

// RequestKind selects the operation a Request performs.
type RequestKind uint8

const (
	RequestConnect RequestKind = iota + 1
	RequestDisconnect
	RequestSpecialize
	RequestUpgrade
)

func (k RequestKind) String() string {
	switch k {
	case RequestConnect:
		return "connect"
	case RequestDisconnect:
		return "disconnect"
	case RequestSpecialize:
		return "specialize"
	case RequestUpgrade:
		return "upgrade"
	default:
		return fmt.Sprintf("request(%d)", uint8(k))
	}
}

// Request is a queued player action. Only the fields its Kind uses are read.
type Request struct {
	Kind           RequestKind
	Source         network.StarID
	Target         network.StarID
	Star           network.StarID
	Connection     network.ConnectionID
	Specialization specialization.Kind
}

// Connect returns a request to link source to target.
func Connect(source, target network.StarID) Request {
	return Request{Kind: RequestConnect, Source: source, Target: target}
}

// Disconnect returns a request to remove a connection.
func Disconnect(id network.ConnectionID) Request {
	return Request{Kind: RequestDisconnect, Connection: id}
}

// Specialize returns a request to convert star to kind.
func Specialize(star network.StarID, kind specialization.Kind) Request {
	return Request{Kind: RequestSpecialize, Star: star, Specialization: kind}
}

// Upgrade returns a request to raise star's level.
func Upgrade(star network.StarID) Request {
	return Request{Kind: RequestUpgrade, Star: star}
}

func (r Request) String() string {
	switch r.Kind {
	case RequestConnect:
		return fmt.Sprintf("connect %d->%d", r.Source, r.Target)
	case RequestDisconnect:
		return fmt.Sprintf("disconnect %d", r.Connection)
	case RequestSpecialize:
		return fmt.Sprintf("specialize %d as %s", r.Star, r.Specialization)
	case RequestUpgrade:
		return fmt.Sprintf("upgrade %d", r.Star)
	default:
		return r.Kind.String()
	}
}

// Enqueue queues req for the start of the next Tick. Safe for concurrent use.
func (s *Simulation) Enqueue(req Request) {
	s.mu.Lock()
	s.pending = append(s.pending, req)
	s.mu.Unlock()
}

// Pending returns the number of queued requests.
func (s *Simulation) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Simulation) drain() []Request {
	s.mu.Lock()
	out := s.pending
	s.pending = nil
	s.mu.Unlock()
	return out
}

// Apply performs req immediately.
func (s *Simulation) Apply(req Request) error {
	switch req.Kind {
	case RequestConnect:
		_, err := s.RequestConnection(req.Source, req.Target)
		return err
	case RequestDisconnect:
		return s.RequestDisconnection(req.Connection)
	case RequestSpecialize:
		return s.RequestSpecialization(req.Star, req.Specialization)
	case RequestUpgrade:
		return s.RequestUpgrade(req.Star)
	default:
		return fmt.Errorf("apply %s: %w", req.Kind, ErrUnknownRequest)
	}
}
