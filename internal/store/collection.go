package store

// Collection keeps rows of one entity type keyed by id, remembering insertion
// order. Ids start at 1 and are never reused.
type Collection[T any] struct {
	rows   map[int64]T
	order  []int64
	nextID int64
}

func newCollection[T any]() *Collection[T] {
	return &Collection[T]{rows: make(map[int64]T), nextID: 1}
}

func (c *Collection[T]) clone() *Collection[T] {
	out := &Collection[T]{
		rows:   make(map[int64]T, len(c.rows)),
		order:  append([]int64(nil), c.order...),
		nextID: c.nextID,
	}
	for id, v := range c.rows {
		out.rows[id] = v
	}
	return out
}

func (c *Collection[T]) insert(build func(id int64) T) T {
	id := c.nextID
	c.nextID++
	v := build(id)
	c.rows[id] = v
	c.order = append(c.order, id)
	return v
}

func (c *Collection[T]) get(id int64) (T, bool) {
	v, ok := c.rows[id]
	return v, ok
}

func (c *Collection[T]) has(id int64) bool {
	_, ok := c.rows[id]
	return ok
}

func (c *Collection[T]) replace(id int64, v T) bool {
	if _, ok := c.rows[id]; !ok {
		return false
	}
	c.rows[id] = v
	return true
}

func (c *Collection[T]) remove(id int64) bool {
	if _, ok := c.rows[id]; !ok {
		return false
	}
	delete(c.rows, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// list returns rows in insertion order. A nil keep returns every row.
func (c *Collection[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.rows[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Collection[T]) count(keep func(T) bool) int {
	n := 0
	for _, v := range c.rows {
		if keep(v) {
			n++
		}
	}
	return n
}

func (c *Collection[T]) size() int {
	return len(c.rows)
}
