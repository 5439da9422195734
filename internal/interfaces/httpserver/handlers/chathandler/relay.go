package chathandler

import (
	"io"
	"strings"
)

// fragmentSource is the consuming side of an upstream chunk stream.
type fragmentSource interface {
	Recv() (string, error)
	Close() error
}

// relayStream forwards fragments to w in arrival order, flushing after each
// write so the client sees text as it is produced, while accumulating the
// full transcript. Any receive or write failure aborts the relay and the
// partial transcript is discarded: the caller must not persist a truncated
// turn.
func relayStream(src fragmentSource, w io.Writer, flush func()) (string, error) {
	defer src.Close()

	var transcript strings.Builder
	for {
		fragment, err := src.Recv()
		if err == io.EOF {
			return transcript.String(), nil
		}
		if err != nil {
			return "", err
		}
		if _, err := io.WriteString(w, fragment); err != nil {
			return "", err
		}
		if flush != nil {
			flush()
		}
		transcript.WriteString(fragment)
	}
}
