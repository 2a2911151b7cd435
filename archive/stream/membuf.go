package stream

import "io"

// memStream is an in-memory Stream with a single shared read/write
// cursor (as a real file has), for building or reading small archives
// (tests, or a build-in-memory-then-upload workflow) without touching
// disk.
type memStream struct {
	buf  []byte
	pos  int64
	size int64
}

// OpenMemory returns an empty in-memory Stream.
func OpenMemory() Stream {
	return &memStream{}
}

func (m *memStream) Write(p []byte) (int, error) {
	needed := m.pos + int64(len(p))
	if needed > int64(len(m.buf)) {
		grown := make([]byte, needed)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += int64(n)
	m.size = max(m.size, m.pos)
	return n, nil
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= m.size {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:m.size])
	m.pos += int64(n)
	return n, nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = m.size + offset
	}
	if target < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	m.pos = target
	return target, nil
}

func (m *memStream) Close() error {
	return nil
}

func (m *memStream) Position() (int64, error) {
	return m.pos, nil
}
