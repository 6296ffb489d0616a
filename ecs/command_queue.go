package ecs

// CommandQueue is a multi-producer single-consumer queue of commands for one owner.
// QueueCommand may be called from any goroutine and never blocks. ProcessCommandQueue must only
// be called by the owner, usually once per frame from its own update.
//
// Commands pushed while ProcessCommandQueue is running are applied by this call or the next one.
// A command may call ProcessCommandQueue on its own queue; the nested call applies only the
// commands queued after the outer drain.
type CommandQueue[C any] struct {
	list mpscList[C]
	buf  []C
}

// NewCommandQueue creates an empty command queue.
func NewCommandQueue[C any]() *CommandQueue[C] {
	return &CommandQueue[C]{}
}

// QueueCommand appends a command to the queue.
func (q *CommandQueue[C]) QueueCommand(cmd C) {
	q.list.push(cmd)
}

// ProcessCommandQueue takes every queued command and applies each one exactly once, in the
// order they were queued. It returns the number of commands applied.
func (q *CommandQueue[C]) ProcessCommandQueue(apply func(C)) int {
	// The buffer is detached while applying so a nested call drains into its own.
	buf := q.list.drain(q.buf[:0])
	q.buf = nil
	for _, cmd := range buf {
		apply(cmd)
	}
	clear(buf)
	q.buf = buf[:0]
	return len(buf)
}

// Pending returns the approximate number of queued commands.
func (q *CommandQueue[C]) Pending() int {
	return q.list.len()
}
