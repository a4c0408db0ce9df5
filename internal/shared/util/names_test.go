package util

import (
	"strings"
	"testing"
)

func TestOwnerKey(t *testing.T) {
	id := "user_2abcDEF"
	got := OwnerKey(id)
	if got != OwnerKey(id) {
		t.Fatalf("expected stable key, got %s", got)
	}
	if got == OwnerKey("user_other") {
		t.Fatalf("expected distinct keys for distinct owners")
	}
	if len(got) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("key contains non-hex character: %c", ch)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "photo.png", want: "photo.png"},
		{name: "separators", in: "a/b\\c.jpg", want: "a_b_c.jpg"},
		{name: "spaces", in: " my cv.pdf ", want: "my_cv.pdf"},
		{name: "control", in: "fox\x00.png", want: "fox.png"},
		{name: "empty", in: "", want: "upload"},
		{name: "traversal", in: "../secret", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("SafeFileName(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("SafeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeFileNameKeepsExtensionWhenTruncating(t *testing.T) {
	got, err := SafeFileName(strings.Repeat("a", 300) + ".png")
	if err != nil {
		t.Fatalf("SafeFileName: %v", err)
	}
	if len(got) != 100 || !strings.HasSuffix(got, ".png") {
		t.Fatalf("expected 100 chars ending in .png, got %d %q", len(got), got)
	}
}
