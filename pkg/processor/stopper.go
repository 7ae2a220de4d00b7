package processor

import "github.com/teslashibe/go-objsize/pkg/display"

// Stopper decides after each displayed frame whether the loop should end.
type Stopper interface {
	// ShouldStop receives the polled key, or display.NoKey.
	ShouldStop(key int) bool
}

// StopperFunc adapts a function to Stopper.
type StopperFunc func(key int) bool

// ShouldStop calls f.
func (f StopperFunc) ShouldStop(key int) bool {
	return f(key)
}

// QuitOn stops when any of keys is pressed.
func QuitOn(keys ...rune) Stopper {
	return StopperFunc(func(key int) bool {
		if key == display.NoKey {
			return false
		}
		for _, k := range keys {
			if key == int(k) {
				return true
			}
		}
		return false
	})
}

// Never returns a stopper that ignores the keyboard.
func Never() Stopper {
	return StopperFunc(func(int) bool { return false })
}
