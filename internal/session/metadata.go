package session

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitFrontMatter separates a leading YAML block from the body. The block
// opens with a "---" line at the very start of the document and closes with
// a "---" or "..." line. ok is false when there is no complete block.
func SplitFrontMatter(content string) (front, body string, ok bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", content, false
	}

	rest := normalized[len("---\n"):]
	offset := 0
	for offset <= len(rest) {
		end := strings.IndexByte(rest[offset:], '\n')
		line := ""
		next := len(rest) + 1
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}

		if line == "---" || line == "..." {
			front = rest[:offset]
			if next <= len(rest) {
				body = rest[next:]
			}
			return front, body, true
		}
		offset = next
	}
	return "", content, false
}

// HasFrontMatter reports whether content starts with a complete front matter block.
func HasFrontMatter(content string) bool {
	_, _, ok := SplitFrontMatter(content)
	return ok
}

// ParseMetadata extracts session metadata from a document. It never fails:
// missing or malformed front matter yields DefaultMetadata, an unknown
// priority falls back to medium and non-string list entries are dropped.
func ParseMetadata(content string) Metadata {
	meta := DefaultMetadata()

	front, _, ok := SplitFrontMatter(content)
	if !ok {
		return meta
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(front), &doc); err != nil {
		return meta
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return meta
	}
	mapping := resolveAlias(doc.Content[0])
	if mapping.Kind != yaml.MappingNode {
		return meta
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		value := resolveAlias(mapping.Content[i+1])

		switch key {
		case "priority":
			if isString(value) {
				if p, ok := ParsePriority(value.Value); ok {
					meta.Priority = p
				}
			}
		case "tags":
			meta.Tags = stringList(value)
		case "branch":
			meta.Branch = scalarText(value)
		case "created_at":
			meta.CreatedAt = scalarText(value)
		case "working_directory":
			meta.WorkingDirectory = scalarText(value)
		case "specs":
			if list := stringList(value); len(list) > 0 {
				meta.Specs = list
			}
		case "files":
			if list := stringList(value); len(list) > 0 {
				meta.Files = list
			}
		}
	}

	return meta
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// scalarText keeps the literal text of any scalar, so an unquoted timestamp
// stays exactly as written.
func scalarText(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

func stringList(n *yaml.Node) []string {
	out := []string{}
	if n == nil || n.Kind != yaml.SequenceNode {
		return out
	}
	for _, item := range n.Content {
		item = resolveAlias(item)
		if isString(item) {
			out = append(out, item.Value)
		}
	}
	return out
}

// RenderFrontMatter prepends meta as a YAML block to body.
func RenderFrontMatter(meta Metadata, body string) (string, error) {
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(data)
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	return sb.String(), nil
}
