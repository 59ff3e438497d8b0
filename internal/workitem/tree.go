package workitem

import (
	"fmt"
	"path/filepath"
	"sort"
)

// TreeNode is a work item placed in the hierarchy with its computed status.
// Children are always sorted ascending by Number.
type TreeNode struct {
	Kind     Kind        `json:"kind"`
	Number   int         `json:"number"`
	Slug     string      `json:"slug"`
	Path     string      `json:"path"`
	Status   Status      `json:"status"`
	Children []*TreeNode `json:"children"`
}

// Tree is the root collection of a build, normally the capabilities.
type Tree struct {
	Nodes []*TreeNode `json:"nodes"`
}

// OrphanError reports a feature or story whose parent directory is not a
// work item of the expected kind.
type OrphanError struct {
	Item       WorkItem
	ParentKind Kind
	ParentPath string
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("orphan work item %s at %s: missing parent %s at %s",
		e.Item.DirName(), e.Item.Path, e.ParentKind, e.ParentPath)
}

// NestingError reports a capability found inside another work item.
// Capabilities are always roots.
type NestingError struct {
	Item      WorkItem
	Enclosing WorkItem
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("capability %s at %s is nested inside %s at %s",
		e.Item.DirName(), e.Item.Path, e.Enclosing.DirName(), e.Enclosing.Path)
}

// Build assembles items into a capability/feature/story tree and computes
// status bottom-up. Story status comes from resolver; parents roll up their
// children with Rollup. Any orphan fails the whole build.
func Build(items []WorkItem, resolver StatusResolver) (*Tree, error) {
	if resolver == nil {
		resolver = FSResolver{}
	}

	byKind := make(map[Kind][]WorkItem, len(Kinds))
	byPath := make(map[string]WorkItem, len(items))
	for _, item := range items {
		byKind[item.Kind] = append(byKind[item.Kind], item)
		byPath[filepath.Clean(item.Path)] = item
	}

	tree := &Tree{Nodes: []*TreeNode{}}
	capabilities := make(map[string]*TreeNode)
	features := make(map[string]*TreeNode)

	for _, item := range byKind[KindCapability] {
		if enclosing, ok := enclosingItem(item, byPath); ok {
			return nil, &NestingError{Item: item, Enclosing: enclosing}
		}
		node := newNode(item)
		capabilities[filepath.Clean(item.Path)] = node
		tree.Nodes = append(tree.Nodes, node)
	}

	for _, item := range byKind[KindFeature] {
		parentPath := filepath.Dir(filepath.Clean(item.Path))
		parent, ok := capabilities[parentPath]
		if !ok {
			return nil, &OrphanError{Item: item, ParentKind: KindCapability, ParentPath: parentPath}
		}
		node := newNode(item)
		features[filepath.Clean(item.Path)] = node
		parent.Children = append(parent.Children, node)
	}

	for _, item := range byKind[KindStory] {
		parentPath := filepath.Dir(filepath.Clean(item.Path))
		parent, ok := features[parentPath]
		if !ok {
			return nil, &OrphanError{Item: item, ParentKind: KindFeature, ParentPath: parentPath}
		}
		parent.Children = append(parent.Children, newNode(item))
	}

	sortNodes(tree.Nodes)
	for _, node := range tree.Nodes {
		if err := resolveStatus(node, resolver); err != nil {
			return nil, err
		}
	}

	return tree, nil
}

// enclosingItem returns the nearest ancestor directory of item that is
// itself a work item.
func enclosingItem(item WorkItem, byPath map[string]WorkItem) (WorkItem, bool) {
	dir := filepath.Clean(item.Path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return WorkItem{}, false
		}
		if w, ok := byPath[parent]; ok {
			return w, true
		}
		dir = parent
	}
}

func newNode(item WorkItem) *TreeNode {
	return &TreeNode{
		Kind:     item.Kind,
		Number:   item.Number,
		Slug:     item.Slug,
		Path:     item.Path,
		Children: []*TreeNode{},
	}
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Number != nodes[j].Number {
			return nodes[i].Number < nodes[j].Number
		}
		return nodes[i].Slug < nodes[j].Slug
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

func resolveStatus(node *TreeNode, resolver StatusResolver) error {
	if node.Kind == KindStory {
		status, err := resolver.Resolve(node.Path)
		if err != nil {
			return err
		}
		node.Status = status
		return nil
	}

	statuses := make([]Status, 0, len(node.Children))
	for _, child := range node.Children {
		if err := resolveStatus(child, resolver); err != nil {
			return err
		}
		statuses = append(statuses, child.Status)
	}
	node.Status = Rollup(statuses)
	return nil
}

// Rollup derives a parent status from its children: DONE when every child is
// DONE, OPEN when every child is OPEN, IN_PROGRESS for any mix. An empty set
// is OPEN.
func Rollup(children []Status) Status {
	if len(children) == 0 {
		return StatusOpen
	}

	allDone, allOpen := true, true
	for _, s := range children {
		if s != StatusDone {
			allDone = false
		}
		if s != StatusOpen {
			allOpen = false
		}
	}

	switch {
	case allDone:
		return StatusDone
	case allOpen:
		return StatusOpen
	default:
		return StatusInProgress
	}
}

// Walk visits every node depth-first in sibling order. Returning false from
// fn stops the walk.
func (t *Tree) Walk(fn func(node *TreeNode, depth int) bool) {
	var visit func(nodes []*TreeNode, depth int) bool
	visit = func(nodes []*TreeNode, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !visit(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.Nodes, 0)
}

// Next returns the first story, depth-first in number order, that is not
// DONE. ok is false when every story is done or the tree has no stories.
func Next(tree *Tree) (node *TreeNode, ok bool) {
	if tree == nil {
		return nil, false
	}
	tree.Walk(func(n *TreeNode, _ int) bool {
		if n.Kind == KindStory && n.Status != StatusDone {
			node, ok = n, true
			return false
		}
		return true
	})
	return node, ok
}

// Counts summarizes a tree.
type Counts struct {
	Capabilities int            `json:"capabilities"`
	Features     int            `json:"features"`
	Stories      int            `json:"stories"`
	StoryStatus  map[Status]int `json:"story_status"`
}

// Counts tallies nodes per kind and stories per status.
func (t *Tree) Counts() Counts {
	c := Counts{StoryStatus: map[Status]int{
		StatusOpen:       0,
		StatusInProgress: 0,
		StatusDone:       0,
	}}
	t.Walk(func(n *TreeNode, _ int) bool {
		switch n.Kind {
		case KindCapability:
			c.Capabilities++
		case KindFeature:
			c.Features++
		case KindStory:
			c.Stories++
			c.StoryStatus[n.Status]++
		}
		return true
	})
	return c
}
