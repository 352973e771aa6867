package persistence

// objectsCache is the LRU map behind a Storage. Keys are bucketed by
// PrimaryKey.Hash and told apart with PrimaryKey.Compare, so equal values
// always find the same entry. It is not safe for concurrent use; Storage
// guards it with its mutex.
type objectsCache struct {
	maxSize int
	size    int
	buckets map[uint64][]*node
	head    *node // most recently used end
	tail    *node // least recently used end
}

type node struct {
	hash   uint64
	pk     *PrimaryKey
	object *Object
	prev   *node
	next   *node
}

func newObjectsCache(maxSize int) *objectsCache {
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head
	return &objectsCache{
		maxSize: maxSize,
		buckets: make(map[uint64][]*node),
		head:    head,
		tail:    tail,
	}
}

// get returns the cached object and marks it as most recently used.
func (c *objectsCache) get(pk *PrimaryKey) (*Object, bool) {
	n := c.find(pk)
	if n == nil {
		return nil, false
	}
	c.moveToFront(n)
	return n.object, true
}

func (c *objectsCache) contains(pk *PrimaryKey) bool {
	return c.find(pk) != nil
}

// put inserts or refreshes the entry of pk, which must not be shared with
// the caller. It returns the key evicted to make room, if any.
func (c *objectsCache) put(pk *PrimaryKey, object *Object) *PrimaryKey {
	if n := c.find(pk); n != nil {
		n.object = object
		c.moveToFront(n)
		return nil
	}
	var evicted *PrimaryKey
	if c.size >= c.maxSize {
		evicted = c.evict()
	}
	n := &node{hash: pk.Hash(), pk: pk, object: object}
	c.buckets[n.hash] = append(c.buckets[n.hash], n)
	c.addToFront(n)
	c.size++
	return evicted
}

func (c *objectsCache) remove(pk *PrimaryKey) bool {
	n := c.find(pk)
	if n == nil {
		return false
	}
	c.drop(n)
	return true
}

func (c *objectsCache) len() int {
	return c.size
}

func (c *objectsCache) clear() {
	c.buckets = make(map[uint64][]*node)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.size = 0
}

// keys returns the cached keys from the most to the least recently used.
func (c *objectsCache) keys() []*PrimaryKey {
	keys := make([]*PrimaryKey, 0, c.size)
	for n := c.head.next; n != c.tail; n = n.next {
		keys = append(keys, n.pk)
	}
	return keys
}

func (c *objectsCache) find(pk *PrimaryKey) *node {
	for _, n := range c.buckets[pk.Hash()] {
		if pk.Equals(n.pk) {
			return n
		}
	}
	return nil
}

func (c *objectsCache) evict() *PrimaryKey {
	lru := c.tail.prev
	if lru == c.head {
		return nil
	}
	c.drop(lru)
	return lru.pk
}

func (c *objectsCache) drop(n *node) {
	bucket := c.buckets[n.hash]
	for i, candidate := range bucket {
		if candidate == n {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(c.buckets, n.hash)
	} else {
		c.buckets[n.hash] = bucket
	}
	c.unlink(n)
	c.size--
}

func (c *objectsCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *objectsCache) unlink(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

func (c *objectsCache) moveToFront(n *node) {
	c.unlink(n)
	c.addToFront(n)
}
