package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{name: "session ID", prefix: "sess", length: 16, wantPrefix: "sess_"},
		{name: "message ID", prefix: "msg", length: 16, wantPrefix: "msg_"},
		{name: "endpoint ID", prefix: "ep", length: 16, wantPrefix: "ep_"},
		{name: "short ID", prefix: "img", length: 8, wantPrefix: "img_"},
		{name: "long ID", prefix: "cred", length: 32, wantPrefix: "cred_"},
		{name: "empty prefix", prefix: "", length: 16, wantErr: true},
		{name: "zero length", prefix: "sess", length: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateSecureID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateSecureID() = %v, want prefix %v", got, tt.wantPrefix)
			}
			if len(got) != len(tt.prefix)+1+tt.length {
				t.Errorf("GenerateSecureID() length = %v, want %v", len(got), len(tt.prefix)+1+tt.length)
			}
			for _, char := range got[len(tt.prefix)+1:] {
				if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
					t.Errorf("GenerateSecureID() contains invalid character: %c", char)
				}
			}
		})
	}
}

func TestGenerateSecureIDUniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id, err := GenerateSecureID("sess", 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("GenerateSecureID() generated duplicate ID: %v", id)
		}
		seen[id] = true
	}
}
