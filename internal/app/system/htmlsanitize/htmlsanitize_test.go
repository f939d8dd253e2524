package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/kinhub/internal/app/system/htmlsanitize"
)

func TestSanitize_PlainText(t *testing.T) {
	result := htmlsanitize.Sanitize("Family patriarch, born in Enugu.")
	if result != "Family patriarch, born in Enugu." {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_SafeFormatting(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	result := htmlsanitize.Sanitize(input)
	if result != input {
		t.Errorf("expected safe HTML preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	result := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	result := htmlsanitize.Sanitize(`<p>Bio</p><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(result, "iframe") {
		t.Error("expected iframe to be removed")
	}
	if !strings.Contains(result, "Bio") {
		t.Error("expected safe content to be preserved")
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if htmlsanitize.Sanitize(input) == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestSanitize_AllowsTables(t *testing.T) {
	input := `<table><tr><td colspan="2">Cell</td></tr></table>`
	result := htmlsanitize.Sanitize(input)
	if !strings.Contains(result, `colspan="2"`) {
		t.Errorf("expected colspan preserved, got %q", result)
	}
}

func TestStripTags(t *testing.T) {
	if got := htmlsanitize.StripTags("<b>Grandfather</b>"); got != "Grandfather" {
		t.Errorf("StripTags: got %q, want %q", got, "Grandfather")
	}
	if got := htmlsanitize.StripTags(""); got != "" {
		t.Errorf("StripTags empty: got %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
