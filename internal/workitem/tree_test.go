package workitem

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRollup(t *testing.T) {
	tests := []struct {
		name     string
		children []Status
		want     Status
	}{
		{"empty", nil, StatusOpen},
		{"single open", []Status{StatusOpen}, StatusOpen},
		{"all open", []Status{StatusOpen, StatusOpen, StatusOpen}, StatusOpen},
		{"all done", []Status{StatusDone, StatusDone}, StatusDone},
		{"done and open", []Status{StatusDone, StatusOpen}, StatusInProgress},
		{"single in progress", []Status{StatusInProgress}, StatusInProgress},
		{"mostly open with one started", []Status{StatusOpen, StatusOpen, StatusOpen, StatusInProgress}, StatusInProgress},
		{"mostly done with one open", []Status{StatusDone, StatusDone, StatusOpen}, StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rollup(tt.children); got != tt.want {
				t.Errorf("Rollup(%v) = %s, want %s", tt.children, got, tt.want)
			}
		})
	}
}

func TestBuildSortsSiblingsByNumber(t *testing.T) {
	root := "/specs/work/doing"
	items := []WorkItem{
		item(t, root, "capability-43_third"),
		item(t, root, "capability-21_first/feature-54_b"),
		item(t, root, "capability-21_first/feature-32_a/story-65_z"),
		item(t, root, "capability-21_first"),
		item(t, root, "capability-21_first/feature-32_a/story-21_y"),
		item(t, root, "capability-32_second"),
		item(t, root, "capability-21_first/feature-32_a"),
		item(t, root, "capability-21_first/feature-32_a/story-43_x"),
	}

	tree, err := Build(items, fixedStatus(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	assertNumbers(t, "capabilities", tree.Nodes, 21, 32, 43)
	first := tree.Nodes[0]
	assertNumbers(t, "features", first.Children, 32, 54)
	assertNumbers(t, "stories", first.Children[0].Children, 21, 43, 65)
	if len(tree.Nodes[1].Children) != 0 || tree.Nodes[1].Children == nil {
		t.Errorf("childless capability should have empty non-nil children")
	}
}

func assertNumbers(t *testing.T, label string, nodes []*TreeNode, want ...int) {
	t.Helper()
	if len(nodes) != len(want) {
		t.Fatalf("%s: got %d nodes, want %d", label, len(nodes), len(want))
	}
	for i, n := range nodes {
		if n.Number != want[i] {
			t.Errorf("%s[%d] = %d, want %d", label, i, n.Number, want[i])
		}
	}
}

func TestBuildAttachesByPathNotSlug(t *testing.T) {
	root := "/w"
	items := []WorkItem{
		item(t, root, "capability-21_a"),
		item(t, root, "capability-32_b"),
		item(t, root, "capability-21_a/feature-32_shared"),
		item(t, root, "capability-32_b/feature-32_shared"),
		item(t, root, "capability-32_b/feature-32_shared/story-43_only-b"),
	}

	tree, err := Build(items, fixedStatus(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(tree.Nodes[0].Children[0].Children); n != 0 {
		t.Errorf("capability a feature has %d stories, want 0", n)
	}
	if n := len(tree.Nodes[1].Children[0].Children); n != 1 {
		t.Errorf("capability b feature has %d stories, want 1", n)
	}
}

func TestBuildRollsUpStatus(t *testing.T) {
	root := "/w"
	done := filepath.Join(root, "capability-21_c/feature-32_f/story-21_a")
	started := filepath.Join(root, "capability-21_c/feature-43_g/story-21_c")
	items := []WorkItem{
		item(t, root, "capability-21_c"),
		item(t, root, "capability-21_c/feature-32_f"),
		item(t, root, "capability-21_c/feature-32_f/story-21_a"),
		item(t, root, "capability-21_c/feature-43_g"),
		item(t, root, "capability-21_c/feature-43_g/story-21_c"),
		item(t, root, "capability-21_c/feature-43_g/story-32_d"),
		item(t, root, "capability-32_empty"),
	}

	tree, err := Build(items, fixedStatus(map[string]Status{
		done:    StatusDone,
		started: StatusInProgress,
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cap21 := tree.Nodes[0]
	if cap21.Children[0].Status != StatusDone {
		t.Errorf("feature-32 = %s, want DONE", cap21.Children[0].Status)
	}
	if cap21.Children[1].Status != StatusInProgress {
		t.Errorf("feature-43 = %s, want IN_PROGRESS", cap21.Children[1].Status)
	}
	if cap21.Status != StatusInProgress {
		t.Errorf("capability-21 = %s, want IN_PROGRESS", cap21.Status)
	}
	if tree.Nodes[1].Status != StatusOpen {
		t.Errorf("empty capability = %s, want OPEN", tree.Nodes[1].Status)
	}
}

func TestBuildDetectsOrphans(t *testing.T) {
	root := "/w"
	tests := []struct {
		name       string
		items      []string
		orphan     string
		parentKind Kind
	}{
		{
			name:       "story without feature",
			items:      []string{"capability-21_c", "capability-21_c/feature-32_f", "capability-21_c/feature-43_g/story-21_s"},
			orphan:     "story-21_s",
			parentKind: KindFeature,
		},
		{
			name:       "feature without capability",
			items:      []string{"capability-21_c", "capability-32_gone/feature-32_f"},
			orphan:     "feature-32_f",
			parentKind: KindCapability,
		},
		{
			name:       "story directly under capability",
			items:      []string{"capability-21_c", "capability-21_c/story-21_s"},
			orphan:     "story-21_s",
			parentKind: KindFeature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]WorkItem, 0, len(tt.items))
			for _, rel := range tt.items {
				items = append(items, item(t, root, rel))
			}

			_, err := Build(items, fixedStatus(nil))
			var oe *OrphanError
			if !errors.As(err, &oe) {
				t.Fatalf("expected OrphanError, got %v", err)
			}
			if oe.Item.DirName() != tt.orphan || oe.ParentKind != tt.parentKind {
				t.Errorf("orphan = %s (parent %s), want %s (parent %s)",
					oe.Item.DirName(), oe.ParentKind, tt.orphan, tt.parentKind)
			}
		})
	}
}

func TestBuildRejectsNestedCapability(t *testing.T) {
	tests := []struct {
		name      string
		items     []string
		nested    string
		enclosing string
	}{
		{
			name:      "inside a feature",
			items:     []string{"capability-21_a", "capability-21_a/feature-32_b", "capability-21_a/feature-32_b/capability-43_c"},
			nested:    "capability-43_c",
			enclosing: "feature-32_b",
		},
		{
			name:      "directly inside a capability",
			items:     []string{"capability-21_a", "capability-21_a/capability-32_b"},
			nested:    "capability-32_b",
			enclosing: "capability-21_a",
		},
		{
			name:      "below a plain directory inside a capability",
			items:     []string{"capability-21_a", "capability-21_a/notes/capability-32_b"},
			nested:    "capability-32_b",
			enclosing: "capability-21_a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]WorkItem, 0, len(tt.items))
			for _, rel := range tt.items {
				items = append(items, item(t, "/w", rel))
			}

			tree, err := Build(items, fixedStatus(nil))
			var ne *NestingError
			if !errors.As(err, &ne) {
				t.Fatalf("expected NestingError, got %v (tree %+v)", err, tree)
			}
			if ne.Item.DirName() != tt.nested || ne.Enclosing.DirName() != tt.enclosing {
				t.Errorf("nested = %s in %s, want %s in %s",
					ne.Item.DirName(), ne.Enclosing.DirName(), tt.nested, tt.enclosing)
			}
		})
	}
}

func TestBuildPropagatesResolverError(t *testing.T) {
	boom := errors.New("boom")
	items := []WorkItem{
		item(t, "/w", "capability-21_c"),
		item(t, "/w", "capability-21_c/feature-32_f"),
		item(t, "/w", "capability-21_c/feature-32_f/story-43_s"),
	}
	_, err := Build(items, StatusResolverFunc(func(string) (Status, error) { return "", boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestNext(t *testing.T) {
	root := "/w"
	items := []WorkItem{
		item(t, root, "capability-21_a"),
		item(t, root, "capability-21_a/feature-32_f"),
		item(t, root, "capability-21_a/feature-32_f/story-21_done"),
		item(t, root, "capability-21_a/feature-32_f/story-32_open"),
		item(t, root, "capability-32_b"),
		item(t, root, "capability-32_b/feature-21_g"),
		item(t, root, "capability-32_b/feature-21_g/story-21_started"),
	}
	statuses := map[string]Status{
		filepath.Join(root, "capability-21_a/feature-32_f/story-21_done"):    StatusDone,
		filepath.Join(root, "capability-32_b/feature-21_g/story-21_started"): StatusInProgress,
	}

	tree, err := Build(items, fixedStatus(statuses))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	next, ok := Next(tree)
	if !ok {
		t.Fatal("expected a next story")
	}
	if next.Slug != "open" {
		t.Errorf("Next = %s, want open (lower capability outranks a started story)", next.Slug)
	}
}

func TestNextNoResult(t *testing.T) {
	if _, ok := Next(&Tree{}); ok {
		t.Error("empty tree should have no next story")
	}
	if _, ok := Next(nil); ok {
		t.Error("nil tree should have no next story")
	}

	items := []WorkItem{
		item(t, "/w", "capability-21_a"),
		item(t, "/w", "capability-21_a/feature-32_f"),
		item(t, "/w", "capability-21_a/feature-32_f/story-21_s"),
	}
	tree, err := Build(items, StatusResolverFunc(func(string) (Status, error) { return StatusDone, nil }))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := Next(tree); ok {
		t.Error("all-done tree should have no next story")
	}
}

func TestTreeCounts(t *testing.T) {
	items := []WorkItem{
		item(t, "/w", "capability-21_a"),
		item(t, "/w", "capability-21_a/feature-32_f"),
		item(t, "/w", "capability-21_a/feature-32_f/story-21_s"),
		item(t, "/w", "capability-21_a/feature-32_f/story-32_t"),
	}
	tree, err := Build(items, fixedStatus(map[string]Status{
		filepath.Join("/w", "capability-21_a/feature-32_f/story-21_s"): StatusDone,
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	c := tree.Counts()
	if c.Capabilities != 1 || c.Features != 1 || c.Stories != 2 {
		t.Errorf("unexpected counts: %+v", c)
	}
	if c.StoryStatus[StatusDone] != 1 || c.StoryStatus[StatusOpen] != 1 {
		t.Errorf("unexpected status counts: %+v", c.StoryStatus)
	}
}
