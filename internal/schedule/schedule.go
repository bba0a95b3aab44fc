package schedule

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// #region constants

const (
	// MinComplexity and MaxComplexity bound every target the controller emits.
	MinComplexity = 0
	MaxComplexity = 10
)

// #endregion constants

// #region mode

// Mode selects how the next target complexity is chosen.
type Mode string

const (
	// ModeRandom draws uniformly from [min, max] on every call.
	ModeRandom Mode = "random"
	// ModeRamp steps 0,1,...,10,0,... and ignores [min, max].
	ModeRamp Mode = "ramp"
)

// ParseMode accepts "random"/"ramp" and the interactive numeric selector
// ("1" = random, "0" = ramp).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "1":
		return ModeRandom, nil
	case "ramp", "0":
		return ModeRamp, nil
	default:
		return "", fmt.Errorf("unknown schedule mode %q (want random|ramp)", s)
	}
}

// #endregion mode

// #region controller

// Controller decides the next target difficulty level.
type Controller struct {
	mode    Mode
	min     int
	max     int
	current int
	rng     *rand.Rand
}

// New creates a Controller. rng may be nil, in which case a randomly seeded
// source is used. Ramp mode starts from current=0, so its first target is 1.
func New(mode Mode, min, max int, rng *rand.Rand) (*Controller, error) {
	if mode != ModeRandom && mode != ModeRamp {
		return nil, fmt.Errorf("unknown schedule mode %q", mode)
	}
	if min < MinComplexity || max > MaxComplexity || min > max {
		return nil, fmt.Errorf("invalid complexity bounds [%d, %d]: want %d <= min <= max <= %d",
			min, max, MinComplexity, MaxComplexity)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{mode: mode, min: min, max: max, rng: rng}, nil
}

// Next returns the target complexity for the next cycle.
func (c *Controller) Next() int {
	switch c.mode {
	case ModeRamp:
		if c.current == MaxComplexity {
			c.current = MinComplexity
		} else {
			c.current++
		}
	default:
		c.current = c.min + c.rng.IntN(c.max-c.min+1)
	}
	return c.current
}

// Current returns the last value handed out (0 before the first call).
func (c *Controller) Current() int {
	return c.current
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// #endregion controller
