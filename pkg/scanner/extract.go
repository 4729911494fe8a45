package scanner

import (
	"context"
	"errors"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax is returned when a source file does not parse cleanly.
var ErrSyntax = errors.New("python syntax error")

// parser wraps a reusable tree-sitter parser configured for Python.
// It is not safe for concurrent use.
type parser struct {
	p *sitter.Parser
}

func newParser() *parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &parser{p: p}
}

func (p *parser) close() {
	p.p.Close()
}

// extract parses content and returns the set of top-level imported names.
func (p *parser) extract(ctx context.Context, content []byte) (map[string]struct{}, error) {
	tree, err := p.p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrSyntax
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrSyntax
	}

	imports := make(map[string]struct{})
	walkNode(root, func(node *sitter.Node) {
		for _, name := range importedModules(node, content) {
			imports[name] = struct{}{}
		}
	})
	return imports, nil
}

// ExtractSource returns the top-level names imported by a Python module.
// It returns ErrSyntax when the source does not parse.
func ExtractSource(ctx context.Context, content []byte) (map[string]struct{}, error) {
	p := newParser()
	defer p.close()
	return p.extract(ctx, content)
}

// ExtractFile returns the top-level names imported by the file at path.
// Unreadable or unparsable files yield an empty set.
func ExtractFile(ctx context.Context, path string) map[string]struct{} {
	content, err := os.ReadFile(path)
	if err != nil {
		return map[string]struct{}{}
	}
	imports, err := ExtractSource(ctx, content)
	if err != nil {
		return map[string]struct{}{}
	}
	return imports
}

func importedModules(node *sitter.Node, content []byte) []string {
	switch node.Type() {
	case "import_statement":
		var names []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "aliased_import" {
				child = child.ChildByFieldName("name")
			}
			if name := firstSegment(child, content); name != "" {
				names = append(names, name)
			}
		}
		return names
	case "import_from_statement":
		module := node.ChildByFieldName("module_name")
		if module == nil {
			return nil
		}
		if module.Type() == "relative_import" {
			module = firstNamedChildOfType(module, "dotted_name")
		}
		if name := firstSegment(module, content); name != "" {
			return []string{name}
		}
		return nil
	case "future_import_statement":
		return []string{"__future__"}
	default:
		return nil
	}
}

// firstSegment returns the first identifier of a dotted_name node.
func firstSegment(node *sitter.Node, content []byte) string {
	if node == nil || node.Type() != "dotted_name" {
		return ""
	}
	if first := firstNamedChildOfType(node, "identifier"); first != nil {
		return nodeText(first, content)
	}
	text := nodeText(node, content)
	if before, _, ok := strings.Cut(text, "."); ok {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(text)
}

func walkNode(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		walkNode(child, visit)
	}
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func firstNamedChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
