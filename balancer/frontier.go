package balancer

// frontierItem is one entry of a search frontier.
type frontierItem struct {
	id       handle // interned state
	cost     int64  // accumulated cost when pushed
	priority int64  // cost + heuristic estimate
	seq      uint64 // push order, breaks priority ties
}

// frontier is a min-heap of *frontierItem ordered by priority, then by push
// order. Entries are never updated in place: a cheaper route to a state
// pushes a new entry and the outdated one is skipped when popped
// ("lazy decrease-key").
type frontier []*frontierItem

// Len returns the number of items in the heap.
func (f frontier) Len() int { return len(f) }

// Less orders by priority, then FIFO among equal priorities.
func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}

	return f[i].seq < f[j].seq
}

// Swap swaps two elements in the heap.
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

// Push adds x onto the heap. Called by heap.Push; x must be *frontierItem.
func (f *frontier) Push(x any) { *f = append(*f, x.(*frontierItem)) }

// Pop removes and returns the last element. Called by heap.Pop.
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]

	return item
}
