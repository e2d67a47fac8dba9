package pathfinder

import "github.com/specialistvlad/transithub/internal/roadstore"

// entry is one frontier record. Superseded entries stay in the heap and are
// skipped when popped.
type entry struct {
	dist int64
	seq  uint64
	node roadstore.NodeID
}

// frontier is a min-heap ordered by distance, then by push order.
type frontier []entry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(entry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	*f = old[:n-1]
	return e
}
