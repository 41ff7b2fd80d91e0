// internal/dom/semantics.go

// Package dom holds the shared vocabulary for interpreting captured nodes:
// interactive tag/role sets, semantic type classification, display labels and
// selector generation. Filters, search and the inspector all consume these so
// the classifications stay consistent across the request surface.
package dom

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
)

// interactiveTags are tags that are actionable by their nature alone.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"option":   true,
	"summary":  true,
}

// interactiveRoles are ARIA roles that imply actionability.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"textbox":          true,
	"combobox":         true,
	"checkbox":         true,
	"radio":            true,
	"switch":           true,
	"tab":              true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"option":           true,
	"searchbox":        true,
	"spinbutton":       true,
	"slider":           true,
	"gridcell":         true,
	"rowheader":        true,
	"columnheader":     true,
}

// IsInteractiveTag reports whether the tag alone marks the node interactive.
func IsInteractiveTag(tag string) bool { return interactiveTags[strings.ToLower(tag)] }

// IsInteractiveRole reports whether the ARIA role marks the node interactive.
func IsInteractiveRole(role string) bool { return interactiveRoles[strings.ToLower(role)] }

// Role returns the node's explicit ARIA role, lowercased.
func Role(n *schemas.Node) string {
	return strings.ToLower(strings.TrimSpace(n.Attr("role")))
}

// IsInteractive reports whether the node is interactive by tag or role.
func IsInteractive(n *schemas.Node) bool {
	return IsInteractiveTag(n.Tag) || IsInteractiveRole(Role(n))
}

// SemanticTypeOf classifies a node from its tag, input type and role.
func SemanticTypeOf(n *schemas.Node) schemas.SemanticType {
	tag := strings.ToLower(n.Tag)
	role := Role(n)

	switch tag {
	case "a":
		return schemas.SemanticLink
	case "button":
		return schemas.SemanticButton
	case "select":
		return schemas.SemanticSelect
	case "textarea":
		return schemas.SemanticTextarea
	case "option":
		return schemas.SemanticOption
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return schemas.SemanticHeading
	case "input":
		switch strings.ToLower(n.Attr("type")) {
		case "checkbox":
			return schemas.SemanticCheckbox
		case "radio":
			return schemas.SemanticRadio
		case "range":
			return schemas.SemanticSlider
		case "button", "submit", "reset", "image":
			return schemas.SemanticButton
		default:
			return schemas.SemanticTextInput
		}
	}

	switch role {
	case "button":
		return schemas.SemanticButton
	case "link":
		return schemas.SemanticLink
	case "textbox", "searchbox":
		return schemas.SemanticTextInput
	case "checkbox", "switch":
		return schemas.SemanticCheckbox
	case "radio":
		return schemas.SemanticRadio
	case "combobox":
		return schemas.SemanticSelect
	case "slider", "spinbutton":
		return schemas.SemanticSlider
	case "tab":
		return schemas.SemanticTab
	case "menuitem", "menuitemcheckbox", "menuitemradio":
		return schemas.SemanticMenuItem
	case "option":
		return schemas.SemanticOption
	case "gridcell", "rowheader", "columnheader":
		return schemas.SemanticCell
	case "heading":
		return schemas.SemanticHeading
	}

	switch tag {
	case "div", "span", "section", "article", "main", "aside", "nav",
		"header", "footer", "ul", "ol", "li", "table", "form":
		return schemas.SemanticContainer
	}
	return schemas.SemanticOther
}

// labelMaxLen bounds display labels so candidate lists stay compact.
const labelMaxLen = 80

// Label derives a short human-readable label for a node, preferring direct
// text, then accessible naming attributes, then form metadata.
func Label(n *schemas.Node) string {
	for _, s := range []string{
		n.Text,
		n.Attr("aria-label"),
		n.Attr("value"),
		n.Attr("placeholder"),
		n.Attr("title"),
		n.Attr("alt"),
		n.Attr("name"),
	} {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			return Truncate(s, labelMaxLen)
		}
	}
	return ""
}

// Truncate shortens s to max runes with an ellipsis marker.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Selectors generates CSS selector candidates for a node, most specific
// first. These are suggestions for a downstream automation driver, not
// guaranteed unique.
func Selectors(n *schemas.Node) []string {
	tag := strings.ToLower(n.Tag)
	var out []string

	if id := n.Attr("id"); id != "" && !strings.ContainsAny(id, " \t\n") {
		out = append(out, "#"+id)
	}
	if testID := n.Attr("data-testid"); testID != "" {
		out = append(out, fmt.Sprintf(`[data-testid=%q]`, testID))
	}
	if name := n.Attr("name"); name != "" {
		out = append(out, fmt.Sprintf(`%s[name=%q]`, tag, name))
	}
	if class := n.Attr("class"); class != "" {
		if first := strings.Fields(class); len(first) > 0 {
			out = append(out, tag+"."+first[0])
		}
	}
	if len(out) == 0 && tag != "" {
		out = append(out, tag)
	}
	return out
}

// PrimarySelector returns the best selector suggestion, or "".
func PrimarySelector(n *schemas.Node) string {
	if sels := Selectors(n); len(sels) > 0 {
		return sels[0]
	}
	return ""
}
