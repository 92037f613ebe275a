// Package vocab supplies the tag vocabulary table the completion engine
// consumes: a fixed, ordered set of known tag names. The table is loaded
// once (built-in default or TOML file) and read-only thereafter; hot
// reloads swap in a whole new table rather than mutating an existing one.
package vocab

import (
	"github.com/markuplab/playground/errors"
	"github.com/spf13/viper"
)

// Table is an ordered, immutable set of tag names.
type Table struct {
	tags []string
}

// New creates a table from the given tag names, preserving order.
func New(tags []string) *Table {
	owned := make([]string, len(tags))
	copy(owned, tags)
	return &Table{tags: owned}
}

// Tags returns the table's entries in order.
func (t *Table) Tags() []string {
	out := make([]string, len(t.tags))
	copy(out, t.tags)
	return out
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.tags)
}

// defaultTags is the built-in vocabulary: the common HTML5 elements a
// beginner meets in the lessons, structural tags first.
var defaultTags = []string{
	"div", "span", "p", "a", "img",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li",
	"table", "thead", "tbody", "tr", "th", "td",
	"form", "input", "label", "button", "select", "option", "textarea",
	"header", "footer", "nav", "main", "section", "article", "aside",
	"strong", "em", "code", "pre", "blockquote",
	"br", "hr",
	"script", "style", "link", "meta", "title",
	"html", "head", "body",
}

// Default returns the built-in tag table.
func Default() *Table {
	return New(defaultTags)
}

// vocabularyFile mirrors the TOML file layout:
//
//	tags = ["div", "span", ...]
type vocabularyFile struct {
	Tags []string `mapstructure:"tags"`
}

// LoadFromFile reads a vocabulary table from a TOML file. An empty tag
// list in the file is an error — a playground with no tag candidates is
// never intended.
func LoadFromFile(path string) (*Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read vocabulary file %s", path)
	}

	var file vocabularyFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal vocabulary file %s", path)
	}

	if len(file.Tags) == 0 {
		return nil, errors.Newf("vocabulary file %s contains no tags", path)
	}

	return New(file.Tags), nil
}
