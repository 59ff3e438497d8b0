// Package report renders a work item tree. Every reporter walks the tree in
// the order the builder produced and shows capabilities with their display
// number (internal number + 1).
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spx-tools/spx/internal/config"
	"github.com/spx-tools/spx/internal/output"
	"github.com/spx-tools/spx/internal/workitem"
)

// Options tune rendering. The zero value renders plain text.
type Options struct {
	// Renderer styles the text reporter; nil disables styling.
	Renderer *lipgloss.Renderer
	// Width bounds table output; <= 0 uses output.DefaultWidth.
	Width int
	// ShowPaths adds the directory of each item to text output.
	ShowPaths bool
}

// Label returns "<kind>-<display number>" for n.
func Label(n *workitem.TreeNode) string {
	return fmt.Sprintf("%s-%d", n.Kind, workitem.DisplayNumber(n.Kind, n.Number))
}

// Render writes tree to w in format.
func Render(w io.Writer, tree *workitem.Tree, format string, opts Options) error {
	var out string
	switch format {
	case config.FormatText, "":
		out = Text(tree, opts)
	case config.FormatJSON:
		data, err := JSON(tree)
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	case config.FormatMarkdown:
		out = Markdown(tree)
	case config.FormatTable:
		width := opts.Width
		if width <= 0 {
			width = output.DefaultWidth
		}
		out = Table(tree, width)
	default:
		return fmt.Errorf("unknown format %q (want one of text, json, markdown, table)", format)
	}
	_, err := io.WriteString(w, out)
	return err
}
