// internal/filters/portals_test.go
package filters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/filters"
)

func TestPortalsDetectsBodyLevelModal(t *testing.T) {
	snap, err := capture.ParseHTMLString(`<html><body>
		<div id="app">content</div>
		<div class="ReactModalPortal"><div role="dialog">Confirm?</div></div>
	</body></html>`)
	require.NoError(t, err)

	portals := filters.Portals(snap)
	require.Len(t, portals, 1)
	assert.Equal(t, "class:reactmodalportal", portals[0].Reason)
	assert.Equal(t, "ReactModalPortal", portals[0].Class)
}

func TestPortalsIgnoresNestedModalMarkup(t *testing.T) {
	// The same markup two levels deep is ordinary content, not a portal.
	snap, err := capture.ParseHTMLString(`<html><body>
		<div id="app">
			<div class="ReactModalPortal">inline demo</div>
		</div>
	</body></html>`)
	require.NoError(t, err)

	assert.Empty(t, filters.Portals(snap))
}

func TestPortalsMarkerAttributeAndRole(t *testing.T) {
	snap, err := capture.ParseHTMLString(`<html><body>
		<div data-radix-portal="">menu</div>
		<div role="alertdialog">Session expired</div>
	</body></html>`)
	require.NoError(t, err)

	portals := filters.Portals(snap)
	require.Len(t, portals, 2)
	assert.Equal(t, "attr:data-radix-portal", portals[0].Reason)
	assert.Equal(t, "role:alertdialog", portals[1].Reason)
}

func TestPortalsZIndexHeuristic(t *testing.T) {
	snap, err := capture.ParseHTMLString(`<html><body>
		<div style="z-index: 2000; position: relative">toast</div>
		<div style="z-index: 10">low</div>
	</body></html>`)
	require.NoError(t, err)

	portals := filters.Portals(snap)
	require.Len(t, portals, 1)
	assert.Equal(t, "z-index:2000", portals[0].Reason)
}

func TestNewPortalsOnlyReportsArrivals(t *testing.T) {
	before, err := capture.ParseHTMLString(`<html><body>
		<div id="app">content</div>
		<div class="toast-container">old toast</div>
	</body></html>`)
	require.NoError(t, err)

	after, err := capture.ParseHTMLString(`<html><body>
		<div id="app">content</div>
		<div class="toast-container">old toast</div>
		<div role="dialog">Are you sure?</div>
	</body></html>`)
	require.NoError(t, err)

	fresh := filters.NewPortals(before, after)
	require.Len(t, fresh, 1)
	assert.Equal(t, "role:dialog", fresh[0].Reason)

	// Unchanged pages report nothing new.
	assert.Empty(t, filters.NewPortals(after, after))
}
