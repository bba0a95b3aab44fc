package orchestrator

import "errors"

// #region errors

// ErrCyclesExhausted is returned by Run when Config.MaxCycles cycles ran
// without reaching the quota.
var ErrCyclesExhausted = errors.New("cycle budget exhausted before quota")

// #endregion

// #region budget

// cycleBudget bounds how many cycles a run may spend. Generation failures and
// rejections count as cycles but not toward the quota.
type cycleBudget struct {
	max int // 0 = unbounded
}

// exhausted reports whether no further cycle may start after used cycles.
func (b cycleBudget) exhausted(used int) bool {
	return b.max > 0 && used >= b.max
}

// remaining returns the cycles left, or -1 when unbounded.
func (b cycleBudget) remaining(used int) int {
	if b.max <= 0 {
		return -1
	}
	if used >= b.max {
		return 0
	}
	return b.max - used
}

// #endregion
