package report

import (
	"strconv"
	"strings"

	"github.com/spx-tools/spx/internal/output"
	"github.com/spx-tools/spx/internal/workitem"
)

var levelNames = map[workitem.Kind]string{
	workitem.KindCapability: "Capability",
	workitem.KindFeature:    "Feature",
	workitem.KindStory:      "Story",
}

// Table renders Level, Number, Name and Status columns no wider than width.
// Names are indented by depth and truncated when space runs out.
func Table(tree *workitem.Tree, width int) string {
	var sb strings.Builder
	table := output.NewTable(&sb, "LEVEL", "NUMBER", "NAME", "STATUS")
	table.SetMaxWidth(width, 2)

	if tree != nil {
		tree.Walk(func(n *workitem.TreeNode, depth int) bool {
			table.AddRow(
				levelNames[n.Kind],
				strconv.Itoa(workitem.DisplayNumber(n.Kind, n.Number)),
				strings.Repeat("  ", depth)+n.Slug,
				string(n.Status),
			)
			return true
		})
	}
	if table.Len() == 0 {
		return "No work items found.\n"
	}
	// strings.Builder writes do not fail.
	_ = table.Render()
	return sb.String()
}
