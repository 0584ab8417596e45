package relay

import (
	"io"
	"strings"
	"testing"
)

func TestSSEScannerNext(t *testing.T) {
	input := ": keepalive comment\n" +
		"event: message\n" +
		"data: {\"a\":1}\n\n" +
		"garbage line\n" +
		"data: {\"b\":2}\n\n" +
		"data: [DONE]\n\n" +
		"data: {\"after\":true}\n\n"

	s := NewSSEScanner(strings.NewReader(input))

	first, err := s.Next()
	if err != nil || first != `{"a":1}` {
		t.Fatalf("first = %q, %v", first, err)
	}
	second, err := s.Next()
	if err != nil || second != `{"b":2}` {
		t.Fatalf("second = %q, %v", second, err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at [DONE], got %v", err)
	}
}

func TestSSEScannerPlainEOF(t *testing.T) {
	s := NewSSEScanner(strings.NewReader("data: {\"x\":1}\n\n"))
	if payload, err := s.Next(); err != nil || payload != `{"x":1}` {
		t.Fatalf("payload = %q, %v", payload, err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestSSEScannerLongLine(t *testing.T) {
	// Longer than the default 64 KiB bufio limit.
	long := strings.Repeat("x", 200*1024)
	s := NewSSEScanner(strings.NewReader("data: " + long + "\n\n"))
	payload, err := s.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != long {
		t.Fatalf("long payload truncated: got %d bytes, want %d", len(payload), len(long))
	}
}
