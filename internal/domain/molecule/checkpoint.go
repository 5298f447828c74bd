package molecule

// CheckpointSet is the set of identifiers already durably present in the
// dataset.  It is always derived from the dataset at startup and handed to
// the fetcher explicitly; it is not safe for concurrent use and is owned by a
// single ingestion run.
type CheckpointSet struct {
	ids map[string]struct{}
}

// NewCheckpointSet returns a set seeded with ids.
func NewCheckpointSet(ids ...string) *CheckpointSet {
	c := &CheckpointSet{ids: make(map[string]struct{}, len(ids))}
	c.Add(ids...)
	return c
}

// Contains reports whether id has been committed.
func (c *CheckpointSet) Contains(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// Add marks ids as committed.  Call only after the chunk holding them has
// been written.
func (c *CheckpointSet) Add(ids ...string) {
	for _, id := range ids {
		c.ids[id] = struct{}{}
	}
}

// Len returns the number of committed identifiers.
func (c *CheckpointSet) Len() int {
	return len(c.ids)
}

//Personal.AI order the ending
