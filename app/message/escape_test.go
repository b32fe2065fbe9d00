package message

import (
	"strings"
	"testing"
)

func TestMarkdownV2_EscapesEveryReservedCharacter(t *testing.T) {
	d := MarkdownV2{}

	for _, c := range MarkdownReserved {
		in := "a" + string(c) + "b"
		want := "a\\" + string(c) + "b"
		if got := d.Escape(in); got != want {
			t.Errorf("Escape(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestMarkdownV2_EscapeIsSinglePass(t *testing.T) {
	d := MarkdownV2{}

	got := d.Escape(`a\b`)
	if got != `a\\b` {
		t.Errorf("Expected backslash escaped once, got %q", got)
	}

	got = d.Escape("1+1=2. (ok)!")
	want := `1\+1\=2\. \(ok\)\!`
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	plain := "plain words 你好"
	if got := d.Escape(plain); got != plain {
		t.Errorf("Expected text without reserved characters unchanged, got %q", got)
	}
}

func TestMarkdownV2_Render(t *testing.T) {
	d := MarkdownV2{}

	got := d.Render("💻", "Go 1.22 [released]", "https://example.com/a_(b)", "V2EX-news", "New loop var semantics.")
	want := "💻 [Go 1\\.22 \\[released\\]](https://example.com/a_(b\\))\n📰 *Source*: V2EX\\-news\n\nNew loop var semantics\\."
	if got != want {
		t.Errorf("Expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestRender_EscapesIcon(t *testing.T) {
	md := MarkdownV2{}.Render("[HN]", "t", "https://x", "HN", "s")
	if !strings.HasPrefix(md, "\\[HN\\] [t](https://x)") {
		t.Errorf("Expected escaped icon, got %q", md)
	}

	h := HTML{}.Render("<b>", "t", "https://x", "HN", "s")
	if !strings.HasPrefix(h, "&lt;b&gt; <a href=") {
		t.Errorf("Expected escaped icon, got %q", h)
	}
}

func TestMarkdownV2_Repair(t *testing.T) {
	d := MarkdownV2{}

	if got := d.Repair(`abc\`); got != "abc" {
		t.Errorf("Expected dangling backslash removed, got %q", got)
	}
	if got := d.Repair(`abc\\`); got != `abc\\` {
		t.Errorf("Expected escaped backslash kept, got %q", got)
	}
}

func TestHTML_RenderAndRepair(t *testing.T) {
	d := HTML{}

	got := d.Render("📰", "A < B & C", "https://example.com/?a=1&b=2", "Src", "x > y")
	if !strings.Contains(got, `<a href="https://example.com/?a=1&amp;b=2">A &lt; B &amp; C</a>`) {
		t.Errorf("Expected escaped link and title, got %q", got)
	}
	if !strings.HasSuffix(got, "x &gt; y") {
		t.Errorf("Expected escaped summary, got %q", got)
	}

	if got := d.Repair("Tom &am"); got != "Tom " {
		t.Errorf("Expected partial entity removed, got %q", got)
	}
	if got := d.Repair("text <b"); got != "text " {
		t.Errorf("Expected partial tag removed, got %q", got)
	}
	if got := d.Repair("a &amp; <b>b</b>"); got != "a &amp; <b>b</b>" {
		t.Errorf("Expected complete markup kept, got %q", got)
	}
}

func TestNewDialect(t *testing.T) {
	if d, err := NewDialect("MarkdownV2"); err != nil || d.Mode() != "MarkdownV2" {
		t.Errorf("Expected MarkdownV2 dialect, got %v, %v", d, err)
	}
	if d, err := NewDialect("HTML"); err != nil || d.Mode() != "HTML" {
		t.Errorf("Expected HTML dialect, got %v, %v", d, err)
	}
	if _, err := NewDialect("Markdown"); err == nil {
		t.Error("Expected error for unsupported mode")
	}
}
