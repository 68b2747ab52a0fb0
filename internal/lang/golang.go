package lang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
)

// goGrammar parses Go source with the standard go/ast parser instead of a
// tree-sitter binding, and presents the result with tree-sitter node kind
// names so the extractor's kind tables apply uniformly.
type goGrammar struct{}

func newGoGrammar() Grammar {
	return goGrammar{}
}

func (goGrammar) ID() string {
	return "go"
}

func (goGrammar) Parse(ctx context.Context, source []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	tf := fset.File(file.Pos())
	result := &Tree{
		EndLine: tf.LineCount(),
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind := "function_declaration"
			if d.Recv != nil {
				kind = "method_declaration"
			}
			// Include the doc comment in the chunk range, matching how
			// decorators are kept with decorated definitions.
			start := d.Pos()
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
			result.TopLevel = append(result.TopLevel, Node{
				Kind:      kind,
				Name:      d.Name.Name,
				StartLine: fset.Position(start).Line,
				EndLine:   fset.Position(d.End()).Line,
			})

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			start := d.Pos()
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
			name := ""
			if len(d.Specs) > 0 {
				if spec, ok := d.Specs[0].(*ast.TypeSpec); ok {
					name = spec.Name.Name
				}
			}
			result.TopLevel = append(result.TopLevel, Node{
				Kind:      "type_declaration",
				Name:      name,
				StartLine: fset.Position(start).Line,
				EndLine:   fset.Position(d.End()).Line,
			})
		}
	}

	return result, nil
}
