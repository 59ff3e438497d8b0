package report

import (
	"encoding/json"

	"github.com/spx-tools/spx/internal/workitem"
)

// Node is the JSON shape of a tree node.
type Node struct {
	Kind          workitem.Kind   `json:"kind"`
	Number        int             `json:"number"`
	DisplayNumber int             `json:"display_number"`
	Slug          string          `json:"slug"`
	Path          string          `json:"path"`
	Status        workitem.Status `json:"status"`
	Children      []Node          `json:"children"`
}

// Document is the top-level JSON status report.
type Document struct {
	Summary workitem.Counts `json:"summary"`
	Items   []Node          `json:"items"`
}

// NewNode converts n and its descendants.
func NewNode(n *workitem.TreeNode) Node {
	node := Node{
		Kind:          n.Kind,
		Number:        n.Number,
		DisplayNumber: workitem.DisplayNumber(n.Kind, n.Number),
		Slug:          n.Slug,
		Path:          n.Path,
		Status:        n.Status,
		Children:      make([]Node, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, NewNode(child))
	}
	return node
}

// NewDocument converts tree.
func NewDocument(tree *workitem.Tree) Document {
	doc := Document{Items: []Node{}}
	if tree == nil {
		tree = &workitem.Tree{}
	}
	doc.Summary = tree.Counts()
	for _, n := range tree.Nodes {
		doc.Items = append(doc.Items, NewNode(n))
	}
	return doc
}

// JSON renders tree as indented JSON.
func JSON(tree *workitem.Tree) ([]byte, error) {
	return json.MarshalIndent(NewDocument(tree), "", "  ")
}
