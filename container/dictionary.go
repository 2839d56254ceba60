package container

import "github.com/arloliu/xdf/internal/intern"

// Dictionary maps distinct event texts to dense ids in first-seen order.
type Dictionary struct {
	table *intern.Table
}

// DictionaryEntry is one id/text pair.
type DictionaryEntry struct {
	ID   int
	Text string
}

// Len returns the number of distinct texts.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}

	return d.table.Len()
}

// Text returns the text of id.
func (d *Dictionary) Text(id int) (string, bool) {
	if d == nil {
		return "", false
	}

	return d.table.Text(id)
}

// ID returns the id of text.
func (d *Dictionary) ID(text string) (int, bool) {
	if d == nil {
		return -1, false
	}

	return d.table.ID(text)
}

// HasCollision reports whether two distinct texts shared a hash while the
// dictionary was built. Ids stay correct either way; lookups of colliding
// texts fall back to comparing strings.
func (d *Dictionary) HasCollision() bool {
	if d == nil {
		return false
	}

	return d.table.HasCollision()
}

// Entries returns every entry in id order.
func (d *Dictionary) Entries() []DictionaryEntry {
	if d == nil {
		return nil
	}

	texts := d.table.Texts()
	out := make([]DictionaryEntry, len(texts))
	for i, t := range texts {
		out[i] = DictionaryEntry{ID: i, Text: t}
	}

	return out
}

// LoadDictionary interns every event text in log order and fills EventType
// so that Dictionary.Text(EventType[i]) == Events[i].Text.
//
// Each call rebuilds the dictionary from the current event log.
func (f *File) LoadDictionary() {
	table := intern.NewTable()
	eventType := make([]int, len(f.Events))

	for i, e := range f.Events {
		eventType[i], _ = table.Intern(e.Text)
	}

	f.Dictionary = &Dictionary{table: table}
	f.EventType = eventType
}
