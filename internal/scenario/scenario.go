// Package scenario loads HCL scripts of timed player actions and feeds them to
// a simulation.
//
//	duration = 120
//
//	action "connect" {
//	  at     = 0
//	  source = 1
//	  target = 0
//	}
//
//	action "specialize" {
//	  at   = 2.5
//	  star = 1
//	  kind = "mining"
//	}
package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/specialization"
)

// ErrInvalidAction is returned for an action block that cannot become a request.
var ErrInvalidAction = errors.New("scenario: invalid action")

// Action is one timed request. The JSON form is accepted by the status API.
type Action struct {
	Type       string  `hcl:"type,label" json:"type"`
	At         float64 `hcl:"at" json:"at,omitempty"`
	Source     *int    `hcl:"source,optional" json:"source,omitempty"`
	Target     *int    `hcl:"target,optional" json:"target,omitempty"`
	Star       *int    `hcl:"star,optional" json:"star,omitempty"`
	Kind       *string `hcl:"kind,optional" json:"kind,omitempty"`
	Connection *int    `hcl:"connection,optional" json:"connection,omitempty"`

	request engine.Request
}

// Request returns the simulation request the action performs.
func (a Action) Request() engine.Request {
	return a.request
}

type scriptFile struct {
	Duration *float64  `hcl:"duration,optional"`
	Actions  []*Action `hcl:"action,block"`
}

// Script is a parsed scenario. Actions are ordered by time; ties keep file order.
type Script struct {
	Name     string
	Duration float64 // Zero when the file sets none
	Actions  []Action

	next int
}

// Load parses the scenario file at path.
func Load(path string) (*Script, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, diags)
	}
	return decode(file.Body, path)
}

// Parse parses scenario source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Script, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", filename, diags)
	}
	return decode(file.Body, filename)
}

func decode(body hcl.Body, filename string) (*Script, error) {
	var parsed scriptFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", filename, diags)
	}

	s := &Script{Name: filename}
	if parsed.Duration != nil {
		if *parsed.Duration < 0 {
			return nil, fmt.Errorf("%s: negative duration: %w", filename, ErrInvalidAction)
		}
		s.Duration = *parsed.Duration
	}
	for i, a := range parsed.Actions {
		if _, err := a.Build(); err != nil {
			return nil, fmt.Errorf("%s: action %d (%q): %w", filename, i, a.Type, err)
		}
		s.Actions = append(s.Actions, *a)
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].At < s.Actions[j].At })
	return s, nil
}

// Build validates the action and returns its request. Build also sets the
// value later returned by Request.
func (a *Action) Build() (engine.Request, error) {
	req, err := a.compile()
	if err != nil {
		return engine.Request{}, err
	}
	a.request = req
	return req, nil
}

func (a *Action) compile() (engine.Request, error) {
	if a.At < 0 {
		return engine.Request{}, fmt.Errorf("at %g before start: %w", a.At, ErrInvalidAction)
	}
	switch a.Type {
	case "connect":
		src, err := star("source", a.Source)
		if err != nil {
			return engine.Request{}, err
		}
		dst, err := star("target", a.Target)
		if err != nil {
			return engine.Request{}, err
		}
		return engine.Connect(src, dst), nil
	case "disconnect":
		id, err := required("connection", a.Connection)
		if err != nil {
			return engine.Request{}, err
		}
		return engine.Disconnect(network.ConnectionID(id)), nil
	case "specialize":
		id, err := star("star", a.Star)
		if err != nil {
			return engine.Request{}, err
		}
		if a.Kind == nil {
			return engine.Request{}, fmt.Errorf("missing kind: %w", ErrInvalidAction)
		}
		kind, err := specialization.ParseKind(*a.Kind)
		if err != nil {
			return engine.Request{}, fmt.Errorf("%v: %w", err, ErrInvalidAction)
		}
		return engine.Specialize(id, kind), nil
	case "upgrade":
		id, err := star("star", a.Star)
		if err != nil {
			return engine.Request{}, err
		}
		return engine.Upgrade(id), nil
	default:
		return engine.Request{}, fmt.Errorf("unknown action type: %w", ErrInvalidAction)
	}
}

func star(name string, v *int) (network.StarID, error) {
	id, err := required(name, v)
	return network.StarID(id), err
}

func required(name string, v *int) (uint32, error) {
	if v == nil {
		return 0, fmt.Errorf("missing %s: %w", name, ErrInvalidAction)
	}
	if *v < 0 {
		return 0, fmt.Errorf("negative %s %d: %w", name, *v, ErrInvalidAction)
	}
	if int64(*v) > math.MaxUint32 {
		return 0, fmt.Errorf("%s %d out of range: %w", name, *v, ErrInvalidAction)
	}
	return uint32(*v), nil
}

// Due returns the actions scheduled at or before simTime that have not been
// returned yet.
func (s *Script) Due(simTime float64) []Action {
	start := s.next
	for s.next < len(s.Actions) && s.Actions[s.next].At <= simTime {
		s.next++
	}
	return s.Actions[start:s.next]
}

// Done reports whether every action has been returned by Due.
func (s *Script) Done() bool {
	return s.next >= len(s.Actions)
}

// Reset rewinds the script to its first action.
func (s *Script) Reset() {
	s.next = 0
}

// Enqueuer accepts simulation requests.
type Enqueuer interface {
	Enqueue(engine.Request)
}

// Feed queues every action due at simTime. Returns the number queued.
func (s *Script) Feed(q Enqueuer, simTime float64) int {
	due := s.Due(simTime)
	for _, a := range due {
		q.Enqueue(a.Request())
	}
	return len(due)
}
