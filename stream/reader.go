// Package stream consumes the upstream Responses API event stream and
// normalizes it into the canonical event sequence. The Reader handles SSE
// framing; the Normalizer owns all per-call lifecycle state.
package stream

import (
	"bufio"
	"io"
	"strings"
)

// Reader reads SSE data payloads from an io.Reader.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a new SSE reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next event payload. Returns nil, io.EOF on [DONE] or
// stream end. Blank lines, comments and event-name lines are skipped; only
// data payloads matter, the type tag lives inside the JSON.
func (r *Reader) Next() ([]byte, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(line[6:])
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil, io.EOF
		}
		return []byte(data), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
