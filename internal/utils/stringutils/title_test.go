package stringutils

import (
	"strings"
	"testing"
)

func TestDeriveTitleShortContent(t *testing.T) {
	got := DeriveTitle("Hello there", DefaultTitleLength)
	if got != "Hello there" {
		t.Fatalf("expected content unchanged, got %q", got)
	}
}

func TestDeriveTitleTruncatesWithEllipsis(t *testing.T) {
	content := strings.Repeat("a", 80)
	got := DeriveTitle(content, DefaultTitleLength)
	want := strings.Repeat("a", 50) + "..."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDeriveTitleExactBoundary(t *testing.T) {
	content := strings.Repeat("b", 50)
	if got := DeriveTitle(content, DefaultTitleLength); got != content {
		t.Fatalf("boundary content should not gain ellipsis, got %q", got)
	}
}

func TestDeriveTitleMultibyte(t *testing.T) {
	content := strings.Repeat("ç", 60)
	got := DeriveTitle(content, DefaultTitleLength)
	want := strings.Repeat("ç", 50) + "..."
	if got != want {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}
