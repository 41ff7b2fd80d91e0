// internal/search/selector_test.go
package search_test

import (
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/search"
)

func TestParseSelectorForms(t *testing.T) {
	cases := []struct {
		raw  string
		want search.Selector
	}{
		{"#login", search.Selector{ID: "login"}},
		{".btn-primary", search.Selector{Class: "btn-primary"}},
		{"button", search.Selector{Tag: "button"}},
		{"button.primary", search.Selector{Tag: "button", Class: "primary"}},
		{"input#email", search.Selector{Tag: "input", ID: "email"}},
		{"[data-testid]", search.Selector{AttrName: "data-testid"}},
		{"[data-testid=submit]", search.Selector{AttrName: "data-testid", AttrValue: "submit", AttrValueSet: true}},
		{`[name="q"]`, search.Selector{AttrName: "name", AttrValue: "q", AttrValueSet: true}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := search.ParseSelector(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestParseSelectorRejectsUnsupportedGrammar(t *testing.T) {
	for _, raw := range []string{
		"", "   ", "div > span", "ul li", "a:hover", "h1, h2",
		"div + p", "section ~ div", "[", "[=x]", "[]", "#", ".", "div..x",
		"3col", "div#",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := search.ParseSelector(raw)
			assert.Error(t, err)
		})
	}
}

func TestSelectorMatches(t *testing.T) {
	n := &schemas.Node{
		Tag: "button", Type: schemas.NodeTypeElement,
		Attributes: map[string]string{"id": "save", "class": "btn btn-primary", "data-testid": "save-btn"},
	}

	match := func(raw string) bool {
		sel, err := search.ParseSelector(raw)
		require.NoError(t, err)
		return sel.Matches(n)
	}

	assert.True(t, match("#save"))
	assert.True(t, match("button"))
	assert.True(t, match("BUTTON"), "tag matching is case-insensitive")
	assert.True(t, match(".btn-primary"))
	assert.True(t, match("button.btn"))
	assert.True(t, match("[data-testid=save-btn]"))
	assert.True(t, match("[data-testid]"))

	assert.False(t, match("#other"))
	assert.False(t, match("a"))
	assert.False(t, match(".btn-secondary"))
	assert.False(t, match("[data-testid=cancel]"))
	assert.False(t, match(".btn-prim"), "class matching is whole-token")
}

// FuzzParseSelector asserts the parser never panics and that accepted
// selectors survive a match attempt against an arbitrary node.
func FuzzParseSelector(f *testing.F) {
	for _, seed := range []string{"#id", ".class", "div.card", "[a=b]", "x#y", "[]", "a b"} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		fz := fuzz.NewConsumer(data)
		raw, err := fz.GetString()
		if err != nil {
			return
		}
		sel, err := search.ParseSelector(raw)
		if err != nil {
			return
		}
		subject := struct {
			Tag   string
			Attrs map[string]string
		}{}
		if err := fz.GenerateStruct(&subject); err != nil {
			subject.Tag = "div"
		}
		sel.Matches(&schemas.Node{Tag: subject.Tag, Type: schemas.NodeTypeElement, Attributes: subject.Attrs})
	})
}
