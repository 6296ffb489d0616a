package ecs

import (
	"slices"
	"sync/atomic"
)

type mpscNode[T any] struct {
	value T
	next  *mpscNode[T]
}

// mpscList is a lock-free multi-producer single-consumer list. Producers push with a CAS on
// the head pointer, the consumer takes everything at once with an atomic swap.
type mpscList[T any] struct {
	head    atomic.Pointer[mpscNode[T]]
	pending atomic.Int64
}

func (l *mpscList[T]) push(value T) {
	node := &mpscNode[T]{value: value}
	for {
		old := l.head.Load()
		node.next = old
		if l.head.CompareAndSwap(old, node) {
			l.pending.Add(1)
			return
		}
	}
}

// drain appends every pushed value to dst in push order.
func (l *mpscList[T]) drain(dst []T) []T {
	node := l.head.Swap(nil)
	start := len(dst)
	for ; node != nil; node = node.next {
		dst = append(dst, node.value)
	}
	l.pending.Add(-int64(len(dst) - start))
	slices.Reverse(dst[start:])
	return dst
}

func (l *mpscList[T]) len() int {
	// A push that has swung the head but not yet counted itself can make this briefly negative.
	return max(int(l.pending.Load()), 0)
}
