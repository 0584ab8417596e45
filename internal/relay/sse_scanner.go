package relay

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	// scannerMaxBuffer must exceed the default 64 KiB bufio limit: a single
	// delta frame can carry long completions, and upstream chunk boundaries
	// never align with line boundaries.
	scannerInitialBuffer = 12 * 1024
	scannerMaxBuffer     = 10 * 1024 * 1024

	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// SSEScanner pulls SSE data payloads off an upstream response body one at a
// time. Lines without a data prefix and SSE comments are discarded; the
// [DONE] sentinel reads as io.EOF, the same as the stream simply ending.
type SSEScanner struct {
	scanner *bufio.Scanner
}

func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next data payload, io.EOF at end of stream or on the
// [DONE] sentinel, or a wrapped scanner error on a broken connection.
func (s *SSEScanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		data, found := strings.CutPrefix(line, "data:")
		if !found {
			continue
		}
		data = strings.TrimSpace(data)

		if data == doneMarker {
			return "", io.EOF
		}
		if data == "" {
			continue
		}
		return data, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("sse scanner: %w", err)
	}
	return "", io.EOF
}
