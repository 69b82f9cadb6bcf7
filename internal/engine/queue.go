package engine

import "container/heap"

// Queue is the shared resolution backlog for one match. It orders messages
// by priority, with insertion order breaking ties, and exposes the
// peek/pop/push triple the reaction protocol needs. Only the entity
// authoritative for the head message may pop it; everyone else just peeks
// and marks itself responded on the message.
type Queue struct {
	items queueItems
	seq   uint64
}

type queueItem struct {
	msg Message
	seq uint64
}

type queueItems []queueItem

func (q queueItems) Len() int { return len(q) }

func (q queueItems) Less(i, j int) bool {
	if q[i].msg.Priority() != q[j].msg.Priority() {
		return q[i].msg.Priority() < q[j].msg.Priority()
	}
	return q[i].seq < q[j].seq
}

func (q queueItems) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queueItems) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *queueItems) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// NewQueue creates an empty resolution queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push inserts a message, keeping priority order.
func (q *Queue) Push(msg Message) {
	q.seq++
	heap.Push(&q.items, queueItem{msg: msg, seq: q.seq})
}

// Peek returns the head message without removing it, or nil when empty.
func (q *Queue) Peek() Message {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0].msg
}

// Pop removes and returns the head message, or nil when empty.
func (q *Queue) Pop() Message {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(&q.items).(queueItem).msg
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.items)
}
