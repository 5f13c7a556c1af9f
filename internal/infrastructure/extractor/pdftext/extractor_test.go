package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// writePDF builds a minimal single-font PDF with one page per entry. An empty
// entry produces a page that only draws a line.
func writePDF(t *testing.T, pages []string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	kids := make([]string, 0, len(pages))
	for _, text := range pages {
		content := "0 0 m 100 100 l S"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef,
		))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestExtractConcatenatesPagesWithText(t *testing.T) {
	path := writePDF(t, []string{"Cells divide", "", "by mitosis"})

	got, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.TotalPages != 3 || got.ExtractedPages != 2 || got.SkippedPages() != 1 {
		t.Fatalf("unexpected page counts %+v", got)
	}
	first := strings.Index(got.Text, "Cells divide")
	second := strings.Index(got.Text, "by mitosis")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if strings.Contains(got.Text, "---") {
		t.Fatalf("expected no page markers, got %q", got.Text)
	}
}

func TestExtractBlankPagesYieldsEmptyText(t *testing.T) {
	path := writePDF(t, []string{"", ""})

	got, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "" || got.ExtractedPages != 0 || got.TotalPages != 2 {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
}

func TestExtractKeepsWhitespaceOnlyPages(t *testing.T) {
	path := writePDF(t, []string{"Cells divide", "   "})

	got, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.TotalPages != 2 || got.ExtractedPages != 2 {
		t.Fatalf("expected whitespace page to count as extracted, got %+v", got)
	}
	if !strings.HasPrefix(got.Text, "Cells divide") || !strings.Contains(got.Text, "   ") {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("just some text"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := NewExtractor().Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
