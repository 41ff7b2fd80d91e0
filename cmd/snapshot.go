// File: cmd/snapshot.go
package cmd

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/capture"
	"github.com/xkilldash9x/domlens-cli/internal/filters"
)

var (
	snapshotDepth       int
	snapshotMaxElements int
	snapshotOutput      string
)

// staticReport is the offline analysis result for one HTML document.
type staticReport struct {
	NodeCount  int                    `json:"node_count"`
	MaxDepth   int                    `json:"max_depth"`
	Outline    []schemas.OutlineEntry `json:"outline"`
	Actionable []schemas.Candidate    `json:"actionable"`
	Headings   []schemas.HeadingEntry `json:"headings,omitempty"`
	Portals    []schemas.PortalRoot   `json:"portals,omitempty"`
}

// snapshotCmd analyzes a static HTML document without a browser. Geometry is
// synthetic, so area-based filtering is weaker than in live capture, but the
// structural views are exact.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [file.html]",
	Short: "Analyze a static HTML file (or stdin) offline",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			in = f
		}

		snap, err := capture.ParseHTML(in)
		if err != nil {
			return fmt.Errorf("parsing document: %w", err)
		}

		filtersCfg := appConfig.Filters()
		actionable := filters.Actionable(snap, filters.ActionableOptions{
			MaxElements:         snapshotMaxElements,
			ClickableSubstrings: filtersCfg.ClickableSubstrings,
			ZeroAreaTestIDs:     filtersCfg.ZeroAreaTestIDs,
			EnhancedHeuristics:  filtersCfg.EnhancedHeuristics,
		})
		headings, _ := filters.Headings(snap, 0)

		report := staticReport{
			NodeCount:  snap.NodeCount,
			MaxDepth:   snap.MaxDepth,
			Outline:    filters.Outline(snap, snapshotDepth),
			Actionable: actionable.Candidates,
			Headings:   headings,
			Portals:    filters.Portals(snap),
		}

		out := cmd.OutOrStdout()
		if snapshotOutput != "" {
			f, err := os.Create(snapshotOutput)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	snapshotCmd.Flags().IntVar(&snapshotDepth, "depth", filters.DefaultOutlineDepth, "outline depth")
	snapshotCmd.Flags().IntVar(&snapshotMaxElements, "max-elements", 50, "actionable candidate cap")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(snapshotCmd)
}
