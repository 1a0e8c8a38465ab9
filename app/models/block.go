package models

// Block is one portable-text node. Type selects the variant; text blocks use
// Style, ListItem, Level, Children and MarkDefs, image blocks use Asset and Alt,
// markdown blocks use Markdown.
type Block struct {
	Type     string     `json:"_type"`
	Key      string     `json:"_key,omitempty"`
	Style    string     `json:"style,omitempty"`
	ListItem string     `json:"listItem,omitempty"`
	Level    int        `json:"level,omitempty"`
	Children []Span     `json:"children,omitempty"`
	MarkDefs []MarkDef  `json:"markDefs,omitempty"`
	Asset    *Reference `json:"asset,omitempty"`
	Alt      string     `json:"alt,omitempty"`
	Caption  string     `json:"caption,omitempty"`
	Markdown string     `json:"markdown,omitempty"`
}

// Span is an inline run of text. Marks are decorator names or MarkDef keys.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef carries the data for an annotation mark such as a link.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// IsListItem reports whether b is part of a list.
func (b *Block) IsListItem() bool {
	return b.Type == TypeBlock && b.ListItem != ""
}

// MarkDef returns the definition for key, if any.
func (b *Block) MarkDef(key string) (MarkDef, bool) {
	for _, d := range b.MarkDefs {
		if d.Key == key {
			return d, true
		}
	}
	return MarkDef{}, false
}

// PlainText joins the text of all children.
func (b *Block) PlainText() string {
	var s string
	for _, c := range b.Children {
		s += c.Text
	}
	return s
}
