package inference

import (
	"bufio"
	"io"
	"strings"
)

const (
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024
	scannerMaxBuffer     = 10 * 1024 * 1024
)

// decodeFunc turns one SSE data payload into a text fragment. done signals a
// clean end of stream.
type decodeFunc func(data string) (fragment string, done bool, err error)

// ChunkStream is a single-consumer sequence of text fragments decoded from an
// upstream SSE body. Recv returns io.EOF on clean termination.
type ChunkStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	decode  decodeFunc
	done    bool
}

func newChunkStream(body io.ReadCloser, decode decodeFunc) *ChunkStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, scannerInitialBuffer), scannerMaxBuffer)
	return &ChunkStream{
		body:    body,
		scanner: scanner,
		decode:  decode,
	}
}

// Recv returns the next non-empty text fragment. Events that carry no text
// (role-only deltas, pings, block boundaries) are skipped.
func (s *ChunkStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		data, found := strings.CutPrefix(line, dataPrefix)
		if !found {
			continue
		}
		fragment, done, err := s.decode(data)
		if err != nil {
			s.done = true
			return "", err
		}
		if done {
			s.done = true
			return "", io.EOF
		}
		if fragment != "" {
			return fragment, nil
		}
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the upstream connection.
func (s *ChunkStream) Close() error {
	return s.body.Close()
}
