package formulation

// Temporal bookkeeping helpers shared by the minimum up/down-time constraints
// and the startup-category eligibility windows. Both encode the same
// "time since last transition" arithmetic: a unit that entered the horizon
// with signed initial status s and has not switched since has been in its
// current state for |s| + t - 1 periods at period t.

// lookbackStart returns the first period of the trailing window of length k
// ending at t, clipped so it never references a period before the horizon
// start.
func lookbackStart(t, k int) int {
	s := t - k + 1
	if s < 1 {
		s = 1
	}
	return s
}

// offWindow returns the inclusive period range [lo, hi] such that a
// switch-off in that range gives an off-duration d at period t with
// delayLo <= d < delayHi. The range is clipped to periods >= 1 and is empty
// when lo > hi.
func offWindow(t, delayLo, delayHi int) (lo, hi int) {
	lo = t - delayHi + 1
	if lo < 1 {
		lo = 1
	}
	hi = t - delayLo
	return lo, hi
}

// offCarryover reports whether the unit's pre-horizon off-time lands inside
// the [delayLo, delayHi) eligibility window at period t: the unit entered the
// horizon off (negative initial status) and, never having switched on, its
// off-duration at t satisfies the window bounds.
func offCarryover(initialStatus, t, delayLo, delayHi int) bool {
	if initialStatus >= 0 {
		return false
	}
	return initialStatus+delayHi >= t && initialStatus+delayLo < t
}

// initialHoldPeriods returns how many leading periods of the horizon the
// initial commitment state must persist: the remaining mandatory up-time when
// the unit entered on (positive status), or the remaining mandatory down-time
// when it entered off. The result is clipped to [0, T].
func initialHoldPeriods(minTime, initialStatus, T int) int {
	var hold int
	if initialStatus > 0 {
		hold = minTime - initialStatus
	} else {
		hold = minTime + initialStatus
	}
	if hold < 0 {
		hold = 0
	}
	if hold > T {
		hold = T
	}
	return hold
}
