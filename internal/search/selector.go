// internal/search/selector.go
package search

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// The search engine supports a deliberately restricted selector grammar:
//
//	#id   .class   [attr]   [attr=value]   tag   tag.class   tag#id
//
// Anything beyond that (combinators, pseudo-classes, attribute operators) is
// rejected so callers get a clear error instead of a silently empty result.

// Selector is one parsed selector expression.
type Selector struct {
	Tag       string
	ID        string
	Class     string
	AttrName  string
	AttrValue string
	// AttrValueSet distinguishes [attr=""] from the bare [attr] form.
	AttrValueSet bool
}

// ParseSelector parses the restricted grammar. The empty string is an error.
func ParseSelector(raw string) (*Selector, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty selector")
	}
	if strings.ContainsAny(s, " >+~:,") {
		return nil, fmt.Errorf("unsupported selector %q: combinators and pseudo-classes are not allowed", raw)
	}

	sel := &Selector{}

	// Attribute form: [attr] or [attr=value], value optionally quoted.
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unterminated attribute selector %q", raw)
		}
		inner := s[1 : len(s)-1]
		if inner == "" {
			return nil, fmt.Errorf("empty attribute selector %q", raw)
		}
		if eq := strings.Index(inner, "="); eq >= 0 {
			sel.AttrName = strings.TrimSpace(inner[:eq])
			sel.AttrValue = strings.Trim(strings.TrimSpace(inner[eq+1:]), `"'`)
			sel.AttrValueSet = true
		} else {
			sel.AttrName = strings.TrimSpace(inner)
		}
		if sel.AttrName == "" {
			return nil, fmt.Errorf("attribute selector %q has no attribute name", raw)
		}
		return sel, nil
	}

	rest := s
	if hash := strings.Index(rest, "#"); hash >= 0 {
		sel.Tag = rest[:hash]
		sel.ID = rest[hash+1:]
		if sel.ID == "" || strings.Contains(sel.ID, ".") {
			return nil, fmt.Errorf("malformed id selector %q", raw)
		}
	} else if dot := strings.Index(rest, "."); dot >= 0 {
		sel.Tag = rest[:dot]
		sel.Class = rest[dot+1:]
		if sel.Class == "" || strings.Contains(sel.Class, ".") {
			return nil, fmt.Errorf("malformed class selector %q", raw)
		}
	} else {
		sel.Tag = rest
	}

	if sel.Tag != "" && !isIdentifier(sel.Tag) {
		return nil, fmt.Errorf("malformed tag in selector %q", raw)
	}
	if sel.Tag == "" && sel.ID == "" && sel.Class == "" {
		return nil, fmt.Errorf("selector %q matches nothing", raw)
	}
	return sel, nil
}

// Matches applies the parsed selector to one node.
func (sel *Selector) Matches(n *schemas.Node) bool {
	if sel.Tag != "" && !strings.EqualFold(n.Tag, sel.Tag) {
		return false
	}
	if sel.ID != "" && n.Attr("id") != sel.ID {
		return false
	}
	if sel.Class != "" && !hasClass(n, sel.Class) {
		return false
	}
	if sel.AttrName != "" {
		if !n.HasAttr(sel.AttrName) {
			return false
		}
		if sel.AttrValueSet && n.Attr(sel.AttrName) != sel.AttrValue {
			return false
		}
	}
	return true
}

func hasClass(n *schemas.Node, class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}
