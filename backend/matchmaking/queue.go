// Package matchmaking holds the FIFO waiting line of connections
// looking for a peer. One Queue exists per session kind.
package matchmaking

// Queue is an ordered set of waiting connection IDs, oldest first.
// It is not safe for concurrent use; callers serialize access.
type Queue struct {
	ids []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends id unless it is already waiting.
// Duplicate join attempts must not create duplicate entries.
func (q *Queue) Enqueue(id string) {
	if q.Contains(id) {
		return
	}
	q.ids = append(q.ids, id)
}

// Dequeue removes and returns the oldest waiting id,
// or empty string if the queue is empty.
func (q *Queue) Dequeue() string {
	if len(q.ids) == 0 {
		return ""
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id
}

// PushFront re-inserts id at the head of the queue, preserving its
// original arrival position after a discarded match attempt.
func (q *Queue) PushFront(id string) {
	if q.Contains(id) {
		return
	}
	q.ids = append([]string{id}, q.ids...)
}

// Remove drops id from the queue wherever it is. No-op if absent.
func (q *Queue) Remove(id string) {
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			return
		}
	}
}

func (q *Queue) Contains(id string) bool {
	for _, v := range q.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (q *Queue) Len() int {
	return len(q.ids)
}
