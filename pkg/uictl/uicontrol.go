// Package uictl defines read-only controls a view polls for live values
// owned by the audio layer.
package uictl

import "golang.org/x/exp/constraints"

type Number interface {
	constraints.Integer | constraints.Float
}

// Levels is a control that can read a window of recent sample levels.
type Levels[N Number] interface {
	Read() []N
}

// LevelsFunc adapts a plain function to Levels.
type LevelsFunc[N Number] func() []N

func (f LevelsFunc[N]) Read() []N { return f() }
