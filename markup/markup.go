// Package markup converts spindrift's lightweight inline markup into HTML.
//
// Supported constructs are _emphasis_, **strong**, [links](href) and
// `inline code`. Every source line becomes one paragraph. There are no block
// constructs: lists, headings and quotes are left as literal text.
package markup

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/dlclark/regexp2"
)

// ParagraphClass is the class attribute given to every generated paragraph.
const ParagraphClass = "droplet-text"

const (
	emPattern     = `_(.*?)_`
	strongPattern = `\*\*(.*?)\*\*`
	linkPattern   = `\[(.*?)\]\((.*?)\)`
	// An opening run of backticks that is not escaped, lazy content, then a
	// closing run at least as long that is neither escaped nor adjacent to
	// another backtick.
	codePattern = "(?<![\\\\`])(`+)(?!`)(.+?)(?<![\\\\`])\\1`*(?!`)"
)

// escaper handles '&' in the same pass as '<' and '>', so entities produced
// for the angle brackets are never escaped a second time.
var escaper = strings.NewReplacer("&", "&amp;", ">", "&gt;", "<", "&lt;")

type rule struct {
	re   *regexp2.Regexp
	repl string
}

// Converter holds the compiled inline patterns. It is safe for concurrent use.
type Converter struct {
	rules []rule
}

// New compiles the inline patterns. Build one Converter and share it.
func New() *Converter {
	return &Converter{
		rules: []rule{
			{regexp2.MustCompile(emPattern, regexp2.None), "<em>$1</em>"},
			{regexp2.MustCompile(strongPattern, regexp2.None), "<strong>$1</strong>"},
			{regexp2.MustCompile(linkPattern, regexp2.None), `<a href="$2">$1</a>`},
			{regexp2.MustCompile(codePattern, regexp2.None), "<code>$2</code>"},
		},
	}
}

// Convert renders raw as a sequence of paragraphs, one per input line, each
// terminated by a newline. It never fails: markup that does not match is
// copied through verbatim.
func (c *Converter) Convert(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		b.WriteString(`<p class="` + ParagraphClass + `">`)
		b.WriteString(c.FormatInline(strings.TrimSuffix(line, "\r")))
		b.WriteString("</p>\n")
	}
	return b.String()
}

// FormatInline escapes a single line and applies the inline rules in order:
// emphasis, strong, links, inline code. Escaped backticks are restored last.
func (c *Converter) FormatInline(line string) string {
	out := escaper.Replace(line)
	for _, r := range c.rules {
		replaced, err := r.re.Replace(out, r.repl, -1, -1)
		if err != nil {
			continue
		}
		out = replaced
	}
	return strings.ReplaceAll(out, "\\`", "`")
}

// Component returns a templ.Component that writes the converted HTML of raw.
func (c *Converter) Component(raw string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, c.Convert(raw))
		return err
	})
}
