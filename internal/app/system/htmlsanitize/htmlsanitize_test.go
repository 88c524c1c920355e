package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/serveease/admin/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if result := htmlsanitize.Sanitize(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	result := htmlsanitize.Sanitize("Please ring the bell twice")
	if result != "Please ring the bell twice" {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Gate code</strong> is <em>4321</em></p>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected safe HTML preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if result := htmlsanitize.Sanitize(input); result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	if result := htmlsanitize.Sanitize(input); strings.Contains(result, "onclick") {
		t.Errorf("expected onclick attribute to be removed, got %q", result)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if result := htmlsanitize.Sanitize(input); strings.Contains(result, "javascript:") {
		t.Errorf("expected javascript: href to be removed, got %q", result)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ul><li>Bring ladder</li><li>Park on street</li></ul>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected list preserved, got %q", result)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	input := `<p>Content</p><iframe src="https://evil.example"></iframe>`
	result := htmlsanitize.Sanitize(input)
	if strings.Contains(result, "iframe") {
		t.Error("expected iframe to be removed")
	}
	if !strings.Contains(result, "Content") {
		t.Error("expected safe content to be preserved")
	}
}

func TestSanitizeToHTML_ReturnsTemplateHTML(t *testing.T) {
	result := htmlsanitize.SanitizeToHTML("<p>Hello</p>")
	if result != template.HTML("<p>Hello</p>") {
		t.Errorf("expected <p>Hello</p>, got %v", result)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	result := htmlsanitize.PlainText("  <b>Ada</b> <script>x</script>Lovelace ")
	if strings.Contains(result, "<") {
		t.Errorf("expected no tags, got %q", result)
	}
	if !strings.HasPrefix(result, "Ada") || !strings.HasSuffix(result, "Lovelace") {
		t.Errorf("unexpected result %q", result)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	if result := htmlsanitize.PlainText("Smith & Sons"); result != "Smith & Sons" {
		t.Errorf("expected unescaped text, got %q", result)
	}
}
