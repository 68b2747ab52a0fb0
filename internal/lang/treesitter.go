package lang

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterGrammar adapts a tree-sitter language to the Grammar interface.
type treeSitterGrammar struct {
	id       string
	language *sitter.Language
}

// newTreeSitterGrammar creates a Grammar backed by the given tree-sitter language.
func newTreeSitterGrammar(id string, language *sitter.Language) Grammar {
	return &treeSitterGrammar{
		id:       id,
		language: language,
	}
}

// ID returns the language identifier.
func (g *treeSitterGrammar) ID() string {
	return g.id
}

// Parse parses source with tree-sitter and converts the concrete tree into
// the language-neutral view. A tree whose root contains ERROR nodes is
// reported as a parse failure so the caller can fall back to size-based
// chunking instead of emitting chunks with unreliable boundaries.
func (g *treeSitterGrammar) Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(g.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter failed to parse %s source", g.id)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s source contains syntax errors", g.id)
	}

	result := &Tree{
		EndLine: int(root.EndPosition().Row) + 1,
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		result.TopLevel = append(result.TopLevel, g.convert(child, source, 1))
	}

	return result, nil
}

// convert maps a tree-sitter node to a language-neutral Node, descending
// depth levels into the node's body for sub-chunk extraction.
func (g *treeSitterGrammar) convert(n *sitter.Node, source []byte, depth int) Node {
	target := n
	kind := n.Kind()

	// Python wraps decorated classes and functions in decorated_definition;
	// the chunk keeps the outer range (decorators included) but takes kind
	// and name from the wrapped definition.
	if kind == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			target = def
			kind = def.Kind()
		}
	}

	node := Node{
		Kind:      kind,
		Name:      nodeName(target, source),
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}

	if depth <= 0 {
		return node
	}

	body := target.ChildByFieldName("body")
	if body == nil {
		body = target
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		node.Children = append(node.Children, g.convert(child, source, depth-1))
	}

	return node
}

// nodeName extracts the declared identifier of a node, or "" if absent.
func nodeName(n *sitter.Node, source []byte) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return string(source[nameNode.StartByte():nameNode.EndByte()])
}
