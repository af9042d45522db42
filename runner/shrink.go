package runner

// shrink searches for a simpler failing value, starting from the tree's
// current value which failed with why. It alternates Simplify after a
// failure and Complicate after a pass, and stops as soon as the step it
// needs makes no progress.
//
// The result is the last value observed to fail, which is not necessarily
// where the tree ends up.
func shrink[T any](tree ValueTree[T], f func(T) error, why string) (string, T) {
	lastWhy, lastValue := why, tree.Current()

	if !tree.Simplify() {
		return lastWhy, lastValue
	}

	for {
		v := tree.Current()
		outcome := evaluate(f, v)

		// A rejection counts as a pass: any behaviour of the test is
		// acceptable for an invalid input, so it is no counterexample.
		if outcome == nil || outcome.Kind == CaseReject {
			if !tree.Complicate() {
				break
			}
			continue
		}

		lastWhy, lastValue = outcome.Message, v
		if !tree.Simplify() {
			break
		}
	}

	return lastWhy, lastValue
}
