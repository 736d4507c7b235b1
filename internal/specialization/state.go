package specialization

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a build or upgrade is requested from a
// state that does not allow it.
var ErrInvalidTransition = errors.New("specialization: invalid state transition")

// Phase is the construction phase of a star.
type Phase uint8

const (
	Ready Phase = iota
	Building
	Upgrading
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case Building:
		return "building"
	case Upgrading:
		return "upgrading"
	default:
		return "unknown"
	}
}

// State is a star's specialization, level and construction phase.
// Target is only meaningful while Building.
type State struct {
	Kind    Kind
	Level   int
	Phase   Phase
	Target  Kind
	Elapsed float64
	Total   float64
}

// NewState returns a Ready level-1 state of the given kind.
func NewState(k Kind) State {
	return State{Kind: k, Level: 1, Phase: Ready}
}

// Completion describes what, if anything, finished during Advance.
type Completion uint8

const (
	NothingCompleted Completion = iota
	BuildCompleted
	UpgradeCompleted
)

// StartBuild begins converting the star to k.
func (s *State) StartBuild(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("build %d: %w", k, ErrInvalidTransition)
	}
	if s.Phase != Ready {
		return fmt.Errorf("build %s while %s: %w", k, s.Phase, ErrInvalidTransition)
	}
	if k == s.Kind {
		return fmt.Errorf("build %s: already %s: %w", k, s.Kind, ErrInvalidTransition)
	}
	s.Phase = Building
	s.Target = k
	s.Elapsed = 0
	s.Total = BuildDuration(k)
	return nil
}

// StartUpgrade begins raising the star's level by one.
func (s *State) StartUpgrade() error {
	if s.Phase != Ready {
		return fmt.Errorf("upgrade while %s: %w", s.Phase, ErrInvalidTransition)
	}
	s.Phase = Upgrading
	s.Elapsed = 0
	s.Total = UpgradeDuration(s.Kind, s.Level)
	return nil
}

// Epsilon absorbs float drift when summed tick steps are compared with a
// duration, so 100 steps of 0.1s complete a 10s build.
const Epsilon = 1e-9

// Advance moves an in-progress build or upgrade forward by dt seconds and
// commits it once elapsed reaches the total. Time left over after completion
// is dropped.
func (s *State) Advance(dt float64) Completion {
	if s.Phase == Ready || dt <= 0 {
		return NothingCompleted
	}
	s.Elapsed += dt
	if s.Elapsed+Epsilon < s.Total {
		return NothingCompleted
	}

	done := NothingCompleted
	switch s.Phase {
	case Building:
		s.Kind = s.Target
		done = BuildCompleted
	case Upgrading:
		s.Level++
		done = UpgradeCompleted
	}
	s.Phase = Ready
	s.Target = 0
	s.Elapsed = 0
	s.Total = 0
	return done
}

// Progress returns the completed fraction of the current build or upgrade, 0 when Ready.
func (s State) Progress() float64 {
	if s.Phase == Ready || s.Total <= 0 {
		return 0
	}
	p := s.Elapsed / s.Total
	if p > 1 {
		return 1
	}
	return p
}

// Remaining returns the seconds left on the current build or upgrade.
func (s State) Remaining() float64 {
	if s.Phase == Ready {
		return 0
	}
	r := s.Total - s.Elapsed
	if r < 0 {
		return 0
	}
	return r
}
