package workitem

import (
	"os"
	"path/filepath"
	"testing"
)

// mkdirs creates each relative directory under root.
func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

// touch creates an empty file at root/rel, creating parents as needed.
func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

// item builds a WorkItem rooted at root for the given relative path.
func item(t *testing.T, root, rel string) WorkItem {
	t.Helper()
	w, err := Parse(filepath.Base(rel))
	if err != nil {
		t.Fatalf("parse %s: %v", rel, err)
	}
	w.Path = filepath.Join(root, rel)
	return w
}

// fixedStatus resolves stories from a map keyed by path, defaulting to OPEN.
func fixedStatus(statuses map[string]Status) StatusResolver {
	return StatusResolverFunc(func(path string) (Status, error) {
		if s, ok := statuses[path]; ok {
			return s, nil
		}
		return StatusOpen, nil
	})
}
