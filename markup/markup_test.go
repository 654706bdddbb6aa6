package markup

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(inner string) string {
	return `<p class="droplet-text">` + inner + "</p>\n"
}

func TestConvertEmpty(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.Convert(""))
	assert.Equal(t, "", c.Convert("\n"))
	assert.Equal(t, "", c.Convert("   \n\t"))
}

func TestConvertEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a < b & c > d", "a &lt; b &amp; c &gt; d"},
		{"<script>", "&lt;script&gt;"},
		{"&lt;", "&amp;lt;"},
		{"fish & chips", "fish &amp; chips"},
		{`say "hi"`, `say "hi"`},
	}
	c := New()
	for _, tt := range tests {
		assert.Equal(t, para(tt.expected), c.Convert(tt.input), "Convert(%q)", tt.input)
	}
}

func TestConvertEscapingDoesNotDoubleEscape(t *testing.T) {
	got := New().Convert("1 < 2")
	assert.NotContains(t, got, "&amp;lt;")
	assert.Contains(t, got, "1 &lt; 2")
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"emphasis", "_hi_", "<em>hi</em>"},
		{"strong", "**hi**", "<strong>hi</strong>"},
		{"link", "[x](http://y)", `<a href="http://y">x</a>`},
		{"code", "`a`", "<code>a</code>"},
		{"code with embedded backtick", "``a`b``", "<code>a`b</code>"},
		{"longer closing run", "`a``", "<code>a</code>"},
		{"escaped backtick", "\\`x", "`x"},
		{"escaped backticks both sides", "\\`x\\`", "`x`"},
		{"empty code span", "``", "``"},
		{"empty emphasis", "__", "<em></em>"},
		{"emphasis is lazy", "_a_ b _c_", "<em>a</em> b <em>c</em>"},
		{"strong is lazy", "**a** b **c**", "<strong>a</strong> b <strong>c</strong>"},
		{
			"all constructs on one line",
			"_a_ and **b** and [c](d) and `e`",
			`<em>a</em> and <strong>b</strong> and <a href="d">c</a> and <code>e</code>`,
		},
		{"two links", "[a](1) [b](2)", `<a href="1">a</a> <a href="2">b</a>`},
		{"unterminated emphasis", "_open", "_open"},
		{"unterminated strong", "**half", "**half"},
		{"unterminated link", "[text](nowhere", "[text](nowhere"},
		{"unterminated code", "`code", "`code"},
		{"code after escaping", "`a < b`", "<code>a &lt; b</code>"},
	}
	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.FormatInline(tt.input))
		})
	}
}

func TestConvertOneParagraphPerLine(t *testing.T) {
	got := New().Convert("one\n\n   \n_two_\n")
	expected := para("one") + para("") + para("   ") + para("<em>two</em>")
	assert.Equal(t, expected, got)
}

func TestConvertStripsCarriageReturns(t *testing.T) {
	got := New().Convert("a\r\nb\r\n")
	assert.Equal(t, para("a")+para("b"), got)
}

func TestConvertPreservesLineOrder(t *testing.T) {
	lines := []string{"first", "second", "third", "fourth"}
	got := New().Convert(strings.Join(lines, "\n"))
	prev := -1
	for _, l := range lines {
		idx := strings.Index(got, para(l))
		require.GreaterOrEqual(t, idx, 0, "missing paragraph %q", l)
		assert.Greater(t, idx, prev, "paragraph %q out of order", l)
		prev = idx
	}
}

func TestConverterIsReusable(t *testing.T) {
	c := New()
	first := c.Convert("**x** `y`")
	second := c.Convert("**x** `y`")
	assert.Equal(t, first, second)
}

func TestComponent(t *testing.T) {
	c := New()
	var buf bytes.Buffer
	require.NoError(t, c.Component("_hi_ there").Render(context.Background(), &buf))
	assert.Equal(t, c.Convert("_hi_ there"), buf.String())
}
