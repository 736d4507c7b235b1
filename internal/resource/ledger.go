package resource

import (
	"errors"
	"fmt"
)

// ErrInsufficientResources is returned by Spend when the ledger cannot cover a cost.
var ErrInsufficientResources = errors.New("resource: insufficient resources")

// Quantity pairs a kind with an amount.
type Quantity struct {
	Kind   Kind    `json:"kind"`
	Amount float64 `json:"amount"`
}

// Cost is a list of quantities that must all be paid together.
type Cost []Quantity

// Scale returns a copy of the cost with every amount multiplied by f.
func (c Cost) Scale(f float64) Cost {
	out := make(Cost, len(c))
	for i, q := range c {
		out[i] = Quantity{Kind: q.Kind, Amount: q.Amount * f}
	}
	return out
}

// Ledger tracks per-kind stock and capacity. The zero value is an empty ledger
// with zero capacity everywhere.
type Ledger struct {
	amount   [kindCount]float64
	capacity [kindCount]float64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Amount returns the current stock of k.
func (l *Ledger) Amount(k Kind) float64 {
	if !k.Valid() {
		return 0
	}
	return l.amount[k]
}

// Capacity returns the capacity for k.
func (l *Ledger) Capacity(k Kind) float64 {
	if !k.Valid() {
		return 0
	}
	return l.capacity[k]
}

// SetCapacity sets the capacity for k. Stock above the new capacity is kept;
// it simply cannot grow until it falls below.
func (l *Ledger) SetCapacity(k Kind, c float64) {
	if !k.Valid() {
		return
	}
	if c < 0 {
		c = 0
	}
	l.capacity[k] = c
}

// ScaleCapacity multiplies every capacity by f. Stock above a shrunken
// capacity is discarded.
func (l *Ledger) ScaleCapacity(f float64) {
	if f < 0 {
		f = 0
	}
	for k := range l.capacity {
		l.capacity[k] *= f
		if l.amount[k] > l.capacity[k] {
			l.amount[k] = l.capacity[k]
		}
	}
}

// Free returns the room left below capacity for k.
func (l *Ledger) Free(k Kind) float64 {
	if !k.Valid() {
		return 0
	}
	free := l.capacity[k] - l.amount[k]
	if free < 0 {
		return 0
	}
	return free
}

// Add deposits up to q of k, capped at capacity. Returns the amount actually added.
func (l *Ledger) Add(k Kind, q float64) float64 {
	if !k.Valid() || q <= 0 {
		return 0
	}
	added := q
	if free := l.Free(k); added > free {
		added = free
	}
	l.amount[k] += added
	return added
}

// Take withdraws up to q of k. Returns the amount actually taken.
func (l *Ledger) Take(k Kind, q float64) float64 {
	if !k.Valid() || q <= 0 {
		return 0
	}
	taken := q
	if taken > l.amount[k] {
		taken = l.amount[k]
	}
	l.amount[k] -= taken
	return taken
}

// CanAfford reports whether every line of the cost is covered.
func (l *Ledger) CanAfford(c Cost) bool {
	var need [kindCount]float64
	for _, q := range c {
		if !q.Kind.Valid() {
			return false
		}
		need[q.Kind] += q.Amount
	}
	for k, n := range need {
		if l.amount[k] < n {
			return false
		}
	}
	return true
}

// Spend pays the whole cost or nothing.
func (l *Ledger) Spend(c Cost) error {
	if !l.CanAfford(c) {
		return fmt.Errorf("spend %v: %w", c, ErrInsufficientResources)
	}
	for _, q := range c {
		l.amount[q.Kind] -= q.Amount
	}
	return nil
}

// Kinds returns the kinds this ledger holds stock or capacity for, in kind order.
func (l *Ledger) Kinds() []Kind {
	var out []Kind
	for k := Kind(0); k < kindCount; k++ {
		if l.capacity[k] > 0 || l.amount[k] > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Total returns the summed stock of every kind.
func (l *Ledger) Total() float64 {
	total := 0.0
	for _, a := range l.amount {
		total += a
	}
	return total
}

// Dominant returns the kind with the largest stock. ok is false for an empty ledger.
func (l *Ledger) Dominant() (k Kind, ok bool) {
	best := 0.0
	for i, a := range l.amount {
		if a > best {
			best = a
			k = Kind(i)
			ok = true
		}
	}
	return k, ok
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := *l
	return &c
}

// Quantities returns the stock of every held kind.
func (l *Ledger) Quantities() []Quantity {
	kinds := l.Kinds()
	out := make([]Quantity, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Quantity{Kind: k, Amount: l.amount[k]})
	}
	return out
}
