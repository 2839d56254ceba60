package container

// registry resolves container stream ids to internal indices.
//
// Streams are created on the first chunk of any type that references an id.
// Indices are assigned in first-reference order and never reused, since the
// channel map and labels are built from them.
type registry struct {
	file *File
	byID map[uint32]int
}

func newRegistry(f *File) *registry {
	return &registry{
		file: f,
		byID: make(map[uint32]int),
	}
}

// resolve returns the stream for id, creating it if needed.
func (r *registry) resolve(id uint32) (*Stream, bool) {
	if idx, ok := r.byID[id]; ok {
		return r.file.Streams[idx], false
	}

	idx := len(r.file.Streams)
	s := newStream(idx, id)
	r.file.Streams = append(r.file.Streams, s)
	r.byID[id] = idx

	return s, true
}

func (r *registry) lookup(id uint32) (*Stream, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}

	return r.file.Streams[idx], true
}
