// Package intern maps strings to dense, insertion-ordered integer ids.
package intern

import "github.com/arloliu/xdf/internal/hash"

// Table interns strings. Ids are assigned 0, 1, 2, ... in first-seen order
// and are never reused until Reset.
//
// Lookups go through a 64-bit hash. Distinct strings sharing a hash are
// kept in the same bucket and compared by value, so a collision costs an
// extra comparison but never merges two texts.
//
// Note: Table is NOT thread-safe.
type Table struct {
	buckets      map[uint64][]int // hash → ids with that hash
	texts        []string         // id → text
	hasCollision bool
	hashFn       func(string) uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return newTableWithHash(hash.ID)
}

func newTableWithHash(fn func(string) uint64) *Table {
	return &Table{
		buckets: make(map[uint64][]int),
		texts:   make([]string, 0),
		hashFn:  fn,
	}
}

// Intern returns the id of text, assigning the next id if it is new.
//
// Returns:
//   - int: The id of text
//   - bool: true if text was added by this call
func (t *Table) Intern(text string) (int, bool) {
	h := t.hashFn(text)

	bucket := t.buckets[h]
	for _, id := range bucket {
		if t.texts[id] == text {
			return id, false
		}
	}

	if len(bucket) > 0 {
		t.hasCollision = true
	}

	id := len(t.texts)
	t.texts = append(t.texts, text)
	t.buckets[h] = append(bucket, id)

	return id, true
}

// ID returns the id of text, if interned.
func (t *Table) ID(text string) (int, bool) {
	for _, id := range t.buckets[t.hashFn(text)] {
		if t.texts[id] == text {
			return id, true
		}
	}

	return -1, false
}

// Text returns the text of id, if assigned.
func (t *Table) Text(id int) (string, bool) {
	if id < 0 || id >= len(t.texts) {
		return "", false
	}

	return t.texts[id], true
}

// Texts returns every interned text indexed by id.
// The returned slice must not be modified.
func (t *Table) Texts() []string {
	return t.texts
}

// Len returns the number of interned texts.
func (t *Table) Len() int {
	return len(t.texts)
}

// HasCollision reports whether two distinct texts have shared a hash.
func (t *Table) HasCollision() bool {
	return t.hasCollision
}

// Reset clears the table, keeping allocated capacity.
func (t *Table) Reset() {
	for k := range t.buckets {
		delete(t.buckets, k)
	}
	t.texts = t.texts[:0]
	t.hasCollision = false
}
