package cache

// entry is a node of the recency list. It carries the value so a shard
// needs only one map lookup per access.
type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// recency is a doubly-linked list ordered from most to least recently used.
// It is not safe for concurrent use; shards guard it with their mutex.
type recency[K comparable, V any] struct {
	head, tail *entry[K, V]
	n          int
}

func (l *recency[K, V]) len() int { return l.n }

// pushFront inserts a new entry as the most recently used.
func (l *recency[K, V]) pushFront(key K, value V) *entry[K, V] {
	e := &entry[K, V]{key: key, value: value, next: l.head}
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.n++
	return e
}

// touch marks e as the most recently used.
func (l *recency[K, V]) touch(e *entry[K, V]) {
	if e == l.head {
		return
	}
	l.unlink(e)
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.n++
}

// popBack removes and returns the least recently used entry.
func (l *recency[K, V]) popBack() (*entry[K, V], bool) {
	e := l.tail
	if e == nil {
		return nil, false
	}
	l.unlink(e)
	return e, true
}

func (l *recency[K, V]) remove(e *entry[K, V]) { l.unlink(e) }

func (l *recency[K, V]) reset() {
	l.head, l.tail, l.n = nil, nil, 0
}

func (l *recency[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.n--
}
