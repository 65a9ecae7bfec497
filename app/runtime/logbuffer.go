package runtime

import (
	"bytes"
	"sync"
)

// LogBuffer is an io.Writer that keeps the last lines written to it. It is
// installed next to stderr as logrus output so error reports can include
// recent log lines.
type LogBuffer struct {
	mu      sync.RWMutex
	lines   []string
	cap     int
	start   int
	size    int
	partial bytes.Buffer
}

func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogBuffer{
		lines: make([]string, capacity),
		cap:   capacity,
	}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, _ := b.partial.Write(p)
	for {
		buf := b.partial.Bytes()
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		line := string(buf[:idx])
		b.partial.Next(idx + 1)
		b.push(line)
	}
	return n, nil
}

func (b *LogBuffer) push(s string) {
	if b.size < b.cap {
		b.lines[(b.start+b.size)%b.cap] = s
		b.size++
		return
	}
	b.lines[b.start] = s
	b.start = (b.start + 1) % b.cap
}

// Last returns up to n lines, oldest first.
func (b *LogBuffer) Last(n int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.size {
		n = b.size
	}
	out := make([]string, 0, n)
	for i := b.size - n; i < b.size; i++ {
		out = append(out, b.lines[(b.start+i)%b.cap])
	}
	return out
}
