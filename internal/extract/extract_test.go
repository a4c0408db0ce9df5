package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestResumeText_RejectsNonPDF(t *testing.T) {
	_, err := ResumeText(context.Background(), []byte("PK\x03\x04 not a pdf"), "application/zip", "cv.docx")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("expected mime in error, got %v", err)
	}
}

func TestResumeText_DeclaredPDFWithWrongBytes(t *testing.T) {
	_, err := ResumeText(context.Background(), []byte("hello world"), "application/pdf", "cv.pdf")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected sniffed bytes to win over declared type, got %v", err)
	}
}

func TestResumeText_MalformedPDF(t *testing.T) {
	_, err := ResumeText(context.Background(), []byte("%PDF-1.4\ngarbage without xref"), "application/pdf", "cv.pdf")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestResumeText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ResumeText(ctx, []byte("%PDF-1.4"), mimePDF, "cv.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mime     string
		fileName string
		want     bool
	}{
		{name: "magic", data: []byte("%PDF-1.7\n..."), mime: "application/octet-stream", fileName: "blob", want: true},
		{name: "magic after whitespace", data: []byte("\r\n%PDF-1.4"), want: true},
		{name: "empty with pdf mime", data: nil, mime: "Application/PDF; charset=binary", want: true},
		{name: "empty with pdf ext", data: nil, fileName: "CV.PDF", want: true},
		{name: "png bytes", data: []byte("\x89PNG\r\n"), mime: "application/pdf", fileName: "x.pdf", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.data, tt.mime, tt.fileName); got != tt.want {
				t.Fatalf("IsPDF = %v, want %v", got, tt.want)
			}
		})
	}
}
