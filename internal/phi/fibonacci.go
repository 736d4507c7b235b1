package phi

import (
	"math"
	"sync"
)

// maxExactFib is the largest n for which fib(n) fits in a uint64.
const maxExactFib = 93

var (
	fibOnce  sync.Once
	fibTable [maxExactFib + 1]uint64
)

func buildFibTable() {
	fibTable[1] = 1
	fibTable[2] = 1
	for i := 3; i <= maxExactFib; i++ {
		fibTable[i] = fibTable[i-1] + fibTable[i-2]
	}
}

// Fib returns the n-th Fibonacci number, 1-indexed: Fib(1)=1, Fib(2)=1, Fib(3)=2.
// Fib(n) for n <= 0 is 0. Values past Fib(93) do not fit in 64 bits and
// saturate at math.MaxUint64, which no real connection count can reach.
func Fib(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n > maxExactFib {
		return math.MaxUint64
	}
	fibOnce.Do(buildFibTable)
	return fibTable[n]
}

// FanOutLimit returns the maximum outgoing connections for a star at the given level.
func FanOutLimit(level int) uint64 {
	return Fib(level)
}
