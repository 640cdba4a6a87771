package codec

import (
	"github.com/matzehuels/graphwire/pkg/errors"
)

// Sequence is an ordered, unique collection that can be merged into.
// [*model.List] (T = any) and [*model.FeatureMap] (T = model.Entry) satisfy
// it.
type Sequence[T any] interface {
	Len() int
	CopyTo(dst []T) int
	// InsertUnique inserts vs at index without duplicate checks.
	InsertUnique(index int, vs ...T)
	// Move moves the element at index from to index to.
	Move(to, from int)
}

// Reconcile makes target hold exactly incoming, in order.
//
// target may already hold some of incoming's elements, typically added by the
// opposite end of a bidirectional reference while the document was decoded.
// Those elements are kept and repositioned; they are never inserted twice.
// Every element already in target must occur in incoming, otherwise a
// RECONCILE_VIOLATION error is returned and target is left partially
// reordered.
//
// With e existing and n incoming elements, Reconcile performs at most e moves
// to bring the existing elements into incoming's relative order, one block
// insertion of the n-e new elements at the front, and at most e moves to put
// the existing elements at their final positions.
//
// incoming is used as scratch space and is clobbered.
func Reconcile[T any](target Sequence[T], incoming []T, equal func(a, b T) bool) error {
	e := target.Len()
	return reconcile(target, incoming, equal, make([]T, e), make([]int, e), make([]bool, e))
}

// reconcile is Reconcile with caller-supplied buffers of length target.Len().
func reconcile[T any](target Sequence[T], incoming []T, equal func(a, b T) bool, existing []T, indices []int, consumed []bool) error {
	e := len(existing)
	if e == 0 {
		if len(incoming) > 0 {
			target.InsertUnique(0, incoming...)
		}
		return nil
	}
	target.CopyTo(existing)

	n := len(incoming)
	dup := 0
	for i := 0; i < n; i++ {
		v := incoming[i]
		matched := false
		// pos tracks the current list index of existing[j]: matched elements
		// occupy [0, dup) and unconsumed ones follow in their original order.
		pos := dup
		for j := 0; j < e; j++ {
			if consumed[j] {
				continue
			}
			if equal(existing[j], v) {
				if pos != dup {
					target.Move(dup, pos)
				}
				indices[dup] = i
				consumed[j] = true
				dup++
				matched = true
				break
			}
			pos++
		}
		if !matched {
			incoming[i-dup] = v
		}
	}

	if dup != e {
		return errors.New(errors.ErrCodeReconcileViolation,
			"%d of %d existing elements missing from the decoded sequence", e-dup, e)
	}

	fresh := n - e
	if fresh > 0 {
		target.InsertUnique(0, incoming[:fresh]...)
	}
	for k := 0; k < e; k++ {
		to, from := indices[k], fresh+k
		if to != from {
			target.Move(to, from)
		}
	}
	return nil
}
