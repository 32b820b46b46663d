package matchmaking

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(id)
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		if got := q.Dequeue(); got != want {
			t.Errorf("dequeue: want %q, got %q", want, got)
		}
	}
	if got := q.Dequeue(); got != "" {
		t.Errorf("dequeue on empty queue: want empty string, got %q", got)
	}
}

func TestQueueEnqueueIdempotent(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("a")
	if q.Len() != 2 {
		t.Fatalf("duplicate enqueue created an entry: %s", spew.Sdump(q))
	}
	if got := q.Dequeue(); got != "a" {
		t.Errorf("duplicate enqueue moved entry, head is %q", got)
	}
}

func TestQueuePushFront(t *testing.T) {
	q := NewQueue()
	q.Enqueue("b")
	q.Enqueue("c")
	q.PushFront("a")
	for _, want := range []string{"a", "b", "c"} {
		if got := q.Dequeue(); got != want {
			t.Errorf("dequeue: want %q, got %q", want, got)
		}
	}
}

func TestQueueRemove(t *testing.T) {
	tests := []struct {
		name   string
		seed   []string
		remove string
		want   []string
	}{
		{name: "head", seed: []string{"a", "b", "c"}, remove: "a", want: []string{"b", "c"}},
		{name: "middle", seed: []string{"a", "b", "c"}, remove: "b", want: []string{"a", "c"}},
		{name: "tail", seed: []string{"a", "b", "c"}, remove: "c", want: []string{"a", "b"}},
		{name: "absent", seed: []string{"a", "b"}, remove: "x", want: []string{"a", "b"}},
		{name: "empty", seed: nil, remove: "x", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			for _, id := range tt.seed {
				q.Enqueue(id)
			}
			q.Remove(tt.remove)
			if q.Contains(tt.remove) {
				t.Errorf("%q still present after remove", tt.remove)
			}
			if q.Len() != len(tt.want) {
				t.Fatalf("want %d entries, got %d", len(tt.want), q.Len())
			}
			for _, want := range tt.want {
				if got := q.Dequeue(); got != want {
					t.Errorf("dequeue: want %q, got %q", want, got)
				}
			}
		})
	}
}
