package report

import (
	"fmt"
	"strings"

	"github.com/spx-tools/spx/internal/workitem"
)

// Markdown renders one heading per node, one level deeper per tree level.
func Markdown(tree *workitem.Tree) string {
	var sb strings.Builder
	sb.WriteString("# Work Items\n")
	if tree == nil || len(tree.Nodes) == 0 {
		sb.WriteString("\nNo work items found.\n")
		return sb.String()
	}

	tree.Walk(func(n *workitem.TreeNode, depth int) bool {
		fmt.Fprintf(&sb, "\n%s %s: %s\n\nStatus: %s\n",
			strings.Repeat("#", depth+2), Label(n), n.Slug, n.Status)
		return true
	})
	return sb.String()
}
