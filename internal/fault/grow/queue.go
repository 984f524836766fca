package grow

import (
	"container/heap"

	"github.com/banshee-data/faultskin/internal/fault"
)

// queue is a max-priority queue of cells keyed by likelihood. Equal
// likelihoods pop in insertion order.
type queue struct {
	h   cellHeap
	seq uint64
}

type queued struct {
	id  fault.CellID
	fl  float64
	seq uint64
}

type cellHeap []queued

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	if h[i].fl != h[j].fl {
		return h[i].fl > h[j].fl
	}
	return h[i].seq < h[j].seq
}
func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)   { *h = append(*h, x.(queued)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (q *queue) push(id fault.CellID, fl float64) {
	heap.Push(&q.h, queued{id: id, fl: fl, seq: q.seq})
	q.seq++
}

func (q *queue) pop() (fault.CellID, bool) {
	if len(q.h) == 0 {
		return fault.NoCell, false
	}
	return heap.Pop(&q.h).(queued).id, true
}

func (q *queue) len() int { return len(q.h) }

func (q *queue) reset() {
	q.h = q.h[:0]
	q.seq = 0
}
