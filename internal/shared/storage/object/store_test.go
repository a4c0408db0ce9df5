package object

import (
	"io"
	"strings"
	"testing"
)

func TestNewKeyNamespacesByOwner(t *testing.T) {
	a, err := NewKey("user_1", "my fox.png")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	b, err := NewKey("user_1", "my fox.png")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if a == b {
		t.Fatalf("expected unique keys, got %s twice", a)
	}
	dirA, _, _ := strings.Cut(a, "/")
	dirB, _, _ := strings.Cut(b, "/")
	if dirA != dirB {
		t.Fatalf("expected same owner directory, got %s and %s", dirA, dirB)
	}
	if !strings.HasSuffix(a, "_my_fox.png") {
		t.Fatalf("unexpected key %s", a)
	}
	if _, err := NewKey("user_1", "../x.png"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestSniffReplaysHead(t *testing.T) {
	body := "\x89PNG\r\n\x1a\n" + strings.Repeat("x", 1000)
	mime, r, err := Sniff(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("expected image/png, got %s", mime)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Fatalf("expected full body replayed, got %d bytes", len(got))
	}
}
