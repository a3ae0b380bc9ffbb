package code

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/yaml"
)

// grammars maps lowercased extensions to Tree-sitter grammars.
// .dts, .xml, .ui and .json have none and use plain line windows.
var grammars = map[string]func() *sitter.Language{
	".py":   python.GetLanguage,
	".c":    c.GetLanguage,
	".cc":   cpp.GetLanguage,
	".cpp":  cpp.GetLanguage,
	".h":    cpp.GetLanguage,
	".hpp":  cpp.GetLanguage,
	".yml":  yaml.GetLanguage,
	".yaml": yaml.GetLanguage,
	".cff":  yaml.GetLanguage,
}

// Language returns the grammar for ext, or nil.
func Language(ext string) *sitter.Language {
	get, ok := grammars[strings.ToLower(ext)]
	if !ok {
		return nil
	}
	return get()
}

// declarations marks the split lines on which a declaration starts. It
// returns nil when the splitter has no grammar or parsing fails.
//
// Top-level nodes are declarations. A node spanning more than chunkLines
// also contributes its children, so an oversized class or function is cut
// between its members rather than mid-statement.
func (s *Splitter) declarations(text string, rowStart []int, n int) []bool {
	if s.lang == nil {
		return nil
	}

	// Parsers are not safe for concurrent use; Split runs on many workers.
	parser := sitter.NewParser()
	parser.SetLanguage(s.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(text))
	if err != nil || tree == nil {
		return nil
	}

	decl := make([]bool, n)
	s.markChildren(tree.RootNode(), rowStart, decl)
	return decl
}

func (s *Splitter) markChildren(node *sitter.Node, rowStart []int, decl []bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		row := int(child.StartPoint().Row)
		if row < len(rowStart) {
			decl[rowStart[row]] = true
		}
		if int(child.EndPoint().Row)-row >= s.chunkLines {
			s.markChildren(child, rowStart, decl)
		}
	}
}
