// FILE: lixenwraith/reflector/jsonx/parser.go
package jsonx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrSyntax is returned for text that is not valid JSON.
var ErrSyntax = errors.New("jsonx: invalid json")

// Parser turns JSON text into plain values: nil, bool, int64, float64, string,
// []any and map[string]any.
type Parser struct {
	text string
}

// NewParser creates a Parser over text.
func NewParser(text string) *Parser {
	return &Parser{text: text}
}

// Decode validates the text and returns its value. Numbers without a fraction or
// exponent that fit an int64 decode as int64, others as float64.
func (p *Parser) Decode() (any, error) {
	if !gjson.Valid(p.text) {
		return nil, ErrSyntax
	}
	return convert(gjson.Parse(p.text)), nil
}

// Keys lists the top-level object keys in document order. Non-objects have none.
func (p *Parser) Keys() []string {
	root := gjson.Parse(p.text)
	if !root.IsObject() {
		return nil
	}
	var keys []string
	root.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Get returns the value at a gjson path such as "home.city" or "tags.0".
func (p *Parser) Get(path string) (any, bool) {
	res := gjson.Get(p.text, path)
	if !res.Exists() {
		return nil, false
	}
	return convert(res), true
}

func convert(res gjson.Result) any {
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return res.Str
	case gjson.Number:
		if !strings.ContainsAny(res.Raw, ".eE") {
			if n, err := strconv.ParseInt(res.Raw, 10, 64); err == nil {
				return n
			}
		}
		return res.Num
	}

	if res.IsArray() {
		items := res.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = convert(item)
		}
		return out
	}
	out := make(map[string]any)
	res.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = convert(value)
		return true
	})
	return out
}
