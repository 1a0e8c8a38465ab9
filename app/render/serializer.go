// Package render turns portable-text bodies into sanitized HTML.
//
// Every block variant is rendered by a rule looked up by its type tag; text
// blocks are further dispatched by style and their spans by mark. The tables
// are exported so callers can replace individual rules.
package render

import (
	"bytes"
	"html"
	"html/template"
	"log/slog"
	"strings"

	"storyline/app/models"

	bm "github.com/microcosm-cc/bluemonday"
	bf "github.com/russross/blackfriday"
)

// BlockRule writes one non-list block.
type BlockRule func(s *Serializer, out *bytes.Buffer, b *models.Block)

// MarkRule returns the opening and closing tags for a mark. def is the zero
// value for decorator marks.
type MarkRule func(def models.MarkDef) (open, close string)

// Serializer holds the dispatch tables.
type Serializer struct {
	// Blocks is keyed by block _type.
	Blocks map[string]BlockRule
	// Styles is keyed by the style of "block" blocks.
	Styles map[string]BlockRule
	// ListItem renders one list entry; lists are grouped around it.
	ListItem BlockRule
	// Marks is keyed by decorator name or annotation _type.
	Marks map[string]MarkRule

	Images ImageURLBuilder

	policy *bm.Policy
	logger *slog.Logger
}

// NewSerializer returns a serializer with the site's presentation rules.
func NewSerializer(images ImageURLBuilder, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	policy := bm.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowElements("figure", "figcaption")

	s := &Serializer{
		Images: images,
		policy: policy,
		logger: logger,
	}
	s.Blocks = map[string]BlockRule{
		models.TypeBlock: renderTextBlock,
		models.TypeImage: renderFigure,
		"markdown":       renderMarkdown,
	}
	s.Styles = map[string]BlockRule{
		"h1":         tagRule("h1", "text-2xl font-bold my-5"),
		"h2":         tagRule("h2", "text-xl font-bold my-5"),
		"h3":         tagRule("h3", "text-lg font-bold my-4"),
		"h4":         tagRule("h4", "font-bold my-3"),
		"blockquote": tagRule("blockquote", "border-l-4 pl-4 italic"),
		"normal":     tagRule("p", ""),
	}
	s.ListItem = tagRule("li", "ml-4 list-disc")
	s.Marks = map[string]MarkRule{
		"strong":         wrap("strong"),
		"em":             wrap("em"),
		"code":           wrap("code"),
		"underline":      wrap("u"),
		"strike-through": wrap("s"),
		"link": func(def models.MarkDef) (string, string) {
			return `<a href="` + html.EscapeString(def.Href) + `" class="text-blue-500 hover:underline">`, "</a>"
		},
	}
	return s
}

// Render serializes blocks. Consecutive list items are grouped into ul/ol
// elements nested by level.
func (s *Serializer) Render(blocks []models.Block) template.HTML {
	var out bytes.Buffer
	var lists []string

	closeTo := func(depth int) {
		for len(lists) > depth {
			out.WriteString("</" + lists[len(lists)-1] + ">")
			lists = lists[:len(lists)-1]
		}
	}

	for i := range blocks {
		b := &blocks[i]
		if !b.IsListItem() {
			closeTo(0)
			s.renderBlock(&out, b)
			continue
		}

		level := b.Level
		if level < 1 {
			level = 1
		}
		tag := listTag(b.ListItem)
		closeTo(level)
		if len(lists) == level && lists[level-1] != tag {
			closeTo(level - 1)
		}
		for len(lists) < level {
			out.WriteString("<" + tag + ">")
			lists = append(lists, tag)
		}
		s.ListItem(s, &out, b)
	}
	closeTo(0)

	return template.HTML(s.policy.SanitizeBytes(out.Bytes()))
}

func (s *Serializer) renderBlock(out *bytes.Buffer, b *models.Block) {
	rule, ok := s.Blocks[b.Type]
	if !ok {
		s.logger.Debug("no rule for block type", "type", b.Type, "key", b.Key)
		return
	}
	rule(s, out, b)
}

// Spans writes the children of b with their marks applied.
func (s *Serializer) Spans(out *bytes.Buffer, b *models.Block) {
	for _, span := range b.Children {
		var closers []string
		for _, mark := range span.Marks {
			def, annotated := b.MarkDef(mark)
			name := mark
			if annotated {
				name = def.Type
			}
			rule, ok := s.Marks[name]
			if !ok {
				continue
			}
			open, close := rule(def)
			out.WriteString(open)
			closers = append(closers, close)
		}
		text := html.EscapeString(span.Text)
		out.WriteString(strings.ReplaceAll(text, "\n", "<br/>"))
		for i := len(closers) - 1; i >= 0; i-- {
			out.WriteString(closers[i])
		}
	}
}

func renderTextBlock(s *Serializer, out *bytes.Buffer, b *models.Block) {
	style := b.Style
	if style == "" {
		style = "normal"
	}
	rule, ok := s.Styles[style]
	if !ok {
		rule = s.Styles["normal"]
	}
	rule(s, out, b)
}

func renderFigure(s *Serializer, out *bytes.Buffer, b *models.Block) {
	if b.Asset == nil {
		return
	}
	src := s.Images.URL(b.Asset.Ref)
	if src == "" {
		s.logger.Debug("skipping image with malformed asset", "ref", b.Asset.Ref)
		return
	}
	out.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(b.Alt) + `" class="my-5"/>`)
	if b.Caption != "" {
		out.WriteString("<figcaption>" + html.EscapeString(b.Caption) + "</figcaption>")
	}
	out.WriteString("</figure>")
}

func renderMarkdown(s *Serializer, out *bytes.Buffer, b *models.Block) {
	out.Write(bf.MarkdownCommon([]byte(b.Markdown)))
}

func tagRule(tag, class string) BlockRule {
	open := "<" + tag + ">"
	if class != "" {
		open = `<` + tag + ` class="` + class + `">`
	}
	return func(s *Serializer, out *bytes.Buffer, b *models.Block) {
		out.WriteString(open)
		s.Spans(out, b)
		out.WriteString("</" + tag + ">")
	}
}

func wrap(tag string) MarkRule {
	return func(models.MarkDef) (string, string) {
		return "<" + tag + ">", "</" + tag + ">"
	}
}

func listTag(kind string) string {
	if kind == "number" {
		return "ol"
	}
	return "ul"
}
