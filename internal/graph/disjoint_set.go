package graph

// DisjointSet is a union-find structure over arbitrary comparable ids.
// The zero value is not usable; create one with NewDisjointSet.
type DisjointSet[T comparable] struct {
	parent map[T]T
}

func NewDisjointSet[T comparable](ids ...T) *DisjointSet[T] {
	d := &DisjointSet[T]{parent: make(map[T]T, len(ids))}
	for _, id := range ids {
		d.Add(id)
	}
	return d
}

// Add registers id as its own singleton set. Known ids are left untouched.
func (d *DisjointSet[T]) Add(id T) {
	if _, ok := d.parent[id]; !ok {
		d.parent[id] = id
	}
}

// Find returns the representative of the set holding id, compressing the
// path on the way. Unknown ids are added first.
func (d *DisjointSet[T]) Find(id T) T {
	d.Add(id)

	root := id
	for d.parent[root] != root {
		root = d.parent[root]
	}

	for id != root {
		next := d.parent[id]
		d.parent[id] = root
		id = next
	}

	return root
}

// Union merges the sets of a and b by attaching the root of b under the root
// of a. It reports whether the sets were distinct.
func (d *DisjointSet[T]) Union(a, b T) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	d.parent[rb] = ra
	return true
}
