package session

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Metadata
	}{
		{
			name:    "no front matter",
			content: "# Handoff\n\nJust a body.\n",
			want:    DefaultMetadata(),
		},
		{
			name:    "priority and mixed tags",
			content: "---\npriority: high\ntags: [a, 1, b, true]\n---\nbody\n",
			want:    Metadata{Priority: PriorityHigh, Tags: []string{"a", "b"}},
		},
		{
			name:    "unknown priority falls back",
			content: "---\npriority: urgent\ntags: [x]\n---\nbody\n",
			want:    Metadata{Priority: PriorityMedium, Tags: []string{"x"}},
		},
		{
			name:    "numeric priority falls back",
			content: "---\npriority: 1\n---\n",
			want:    DefaultMetadata(),
		},
		{
			name:    "quoted number tag kept",
			content: "---\ntags: [\"1\", 2]\n---\n",
			want:    Metadata{Priority: PriorityMedium, Tags: []string{"1"}},
		},
		{
			name:    "malformed yaml",
			content: "---\npriority: [high\n---\nbody\n",
			want:    DefaultMetadata(),
		},
		{
			name:    "unterminated block",
			content: "---\npriority: high\nbody without closer\n",
			want:    DefaultMetadata(),
		},
		{
			name:    "dots closer",
			content: "---\npriority: low\n...\nbody\n",
			want:    Metadata{Priority: PriorityLow, Tags: []string{}},
		},
		{
			name:    "crlf line endings",
			content: "---\r\npriority: high\r\n---\r\nbody\r\n",
			want:    Metadata{Priority: PriorityHigh, Tags: []string{}},
		},
		{
			name:    "block not at start",
			content: "\n---\npriority: high\n---\n",
			want:    DefaultMetadata(),
		},
		{
			name:    "scalar document",
			content: "---\njust text\n---\n",
			want:    DefaultMetadata(),
		},
		{
			name: "all keys",
			content: "---\npriority: low\ntags:\n  - docs\nbranch: main\ncreated_at: 2026-01-13T08:01:05Z\n" +
				"working_directory: /work\nspecs:\n  - specs/a.md\nfiles: [src/**/*.go]\n---\nbody\n",
			want: Metadata{
				Priority:         PriorityLow,
				Tags:             []string{"docs"},
				Branch:           "main",
				CreatedAt:        "2026-01-13T08:01:05Z",
				WorkingDirectory: "/work",
				Specs:            []string{"specs/a.md"},
				Files:            []string{"src/**/*.go"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMetadata(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMetadata() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMetadataIdempotent(t *testing.T) {
	content := "---\npriority: high\ntags: [a, 2]\n---\nbody\n"
	first := ParseMetadata(content)
	second := ParseMetadata(content)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	front, body, ok := SplitFrontMatter("---\na: 1\n---\n\nhello\n")
	if !ok {
		t.Fatal("expected front matter")
	}
	if front != "a: 1\n" {
		t.Errorf("front = %q", front)
	}
	if body != "\nhello\n" {
		t.Errorf("body = %q", body)
	}

	if _, _, ok := SplitFrontMatter("---\n---"); !ok {
		t.Error("empty block closed at EOF should be recognised")
	}
}

func TestRenderFrontMatterRoundTrip(t *testing.T) {
	meta := Metadata{Priority: PriorityHigh, Tags: []string{"api"}, Branch: "feat/x"}
	doc, err := RenderFrontMatter(meta, "# Body\n")
	if err != nil {
		t.Fatalf("RenderFrontMatter: %v", err)
	}
	if !strings.HasPrefix(doc, "---\n") || !strings.HasSuffix(doc, "---\n\n# Body\n") {
		t.Errorf("unexpected layout:\n%s", doc)
	}
	if got := ParseMetadata(doc); !reflect.DeepEqual(got, meta) {
		t.Errorf("ParseMetadata(rendered) = %+v, want %+v", got, meta)
	}
}
