package runner

// RejectLocal records that a strategy rejected a value at whence. It returns
// ErrTooManyLocalRejects, without recording, once the budget is spent; the
// caller should then give up.
func (r *TestRunner) RejectLocal(whence string) error {
	if r.localRejects >= r.config.MaxLocalRejects {
		return ErrTooManyLocalRejects
	}
	r.localRejects++
	r.localRejectDetail[whence]++
	return nil
}

func (r *TestRunner) rejectGlobal(whence string) error {
	if r.globalRejects >= r.config.MaxGlobalRejects {
		return ErrTooManyGlobalRejects
	}
	r.globalRejects++
	r.globalRejectDetail[whence]++
	return nil
}

// FlatMapRegen counts one regeneration attempt and reports whether it is
// still within Config.MaxFlatMapRegens. The counter is shared with every
// PartialClone of the same root runner and is safe for concurrent use.
func (r *TestRunner) FlatMapRegen() bool {
	return r.flatMapRegens.Add(1)-1 < uint64(r.config.MaxFlatMapRegens)
}

// FlatMapRegens returns the number of regeneration attempts counted so far
// across the runner's clone family.
func (r *TestRunner) FlatMapRegens() uint64 {
	return r.flatMapRegens.Load()
}
