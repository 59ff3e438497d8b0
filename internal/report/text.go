package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spx-tools/spx/internal/workitem"
)

type textStyles struct {
	label  lipgloss.Style
	slug   lipgloss.Style
	path   lipgloss.Style
	status map[workitem.Status]lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	if r == nil {
		plain := lipgloss.NewStyle()
		return textStyles{
			label: plain, slug: plain, path: plain,
			status: map[workitem.Status]lipgloss.Style{},
		}
	}
	return textStyles{
		label: r.NewStyle().Bold(true),
		slug:  r.NewStyle(),
		path:  r.NewStyle().Faint(true),
		status: map[workitem.Status]lipgloss.Style{
			workitem.StatusDone:       r.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true),
			workitem.StatusInProgress: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
			workitem.StatusOpen:       r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		},
	}
}

func (s textStyles) badge(status workitem.Status) string {
	text := "[" + string(status) + "]"
	if style, ok := s.status[status]; ok {
		return style.Render(text)
	}
	return text
}

// Text renders an indented tree, two spaces per level:
//
//	capability-22 core-cli [IN_PROGRESS]
//	  feature-32 walk [DONE]
//	    story-43 test [DONE]
func Text(tree *workitem.Tree, opts Options) string {
	if tree == nil || len(tree.Nodes) == 0 {
		return "No work items found.\n"
	}

	styles := newTextStyles(opts.Renderer)
	var sb strings.Builder
	tree.Walk(func(n *workitem.TreeNode, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(styles.label.Render(Label(n)))
		sb.WriteString(" ")
		sb.WriteString(styles.slug.Render(n.Slug))
		sb.WriteString(" ")
		sb.WriteString(styles.badge(n.Status))
		if opts.ShowPaths {
			sb.WriteString(" ")
			sb.WriteString(styles.path.Render(n.Path))
		}
		sb.WriteString("\n")
		return true
	})
	return sb.String()
}

// Summary is a one-line count of stories per status.
func Summary(tree *workitem.Tree) string {
	c := tree.Counts()
	return fmt.Sprintf("%d capabilities, %d features, %d stories (%d done, %d in progress, %d open)",
		c.Capabilities, c.Features, c.Stories,
		c.StoryStatus[workitem.StatusDone],
		c.StoryStatus[workitem.StatusInProgress],
		c.StoryStatus[workitem.StatusOpen],
	)
}
