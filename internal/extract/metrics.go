package extract

import (
	"bytes"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/code-atlas/internal/lang"
)

// nodeKinds is the per-language node-type-name mapping table that drives
// metrics and caller-context resolution. Adding a language means adding a
// row here, not writing new traversal code.
type nodeKinds struct {
	functions map[string]bool
	classes   map[string]bool
}

func kindSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var kindTable = map[lang.Language]nodeKinds{
	lang.LangPython: {
		functions: kindSet("function_definition"),
		classes:   kindSet("class_definition"),
	},
	lang.LangTypeScript: {
		functions: kindSet("function_declaration", "method_definition", "arrow_function"),
		classes:   kindSet("class_declaration", "interface_declaration"),
	},
	lang.LangJavaScript: {
		functions: kindSet("function_declaration", "method_definition", "arrow_function"),
		classes:   kindSet("class_declaration"),
	},
	lang.LangJava: {
		functions: kindSet("method_declaration", "constructor_declaration"),
		classes:   kindSet("class_declaration", "interface_declaration", "enum_declaration"),
	},
	lang.LangRust: {
		functions: kindSet("function_item"),
		classes:   kindSet("struct_item", "trait_item", "enum_item"),
	},
	lang.LangRuby: {
		functions: kindSet("method", "singleton_method"),
		classes:   kindSet("class", "module"),
	},
	lang.LangPHP: {
		functions: kindSet("function_definition", "method_declaration"),
		classes:   kindSet("class_declaration", "interface_declaration", "trait_declaration"),
	},
	lang.LangC: {
		functions: kindSet("function_definition"),
		classes:   kindSet("struct_specifier"),
	},
}

// definitionKind reports whether a node kind opens a definition scope for
// the language, used when attributing caller context.
func definitionKind(l lang.Language, kind string) bool {
	t, ok := kindTable[l]
	if !ok {
		return false
	}
	return t.functions[kind] || t.classes[kind]
}

// computeMetrics walks the tree once, counting function and class nodes by
// kind name against the language's table.
func computeMetrics(l lang.Language, root *sitter.Node, src []byte) Metrics {
	m := Metrics{Lines: countLines(src)}
	t, ok := kindTable[l]
	if !ok {
		return m
	}
	walk(root, func(n *sitter.Node) bool {
		kind := n.Kind()
		if t.functions[kind] {
			m.Functions++
		} else if t.classes[kind] {
			m.Classes++
		}
		return true
	})
	return m
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}

// walk recursively visits every node; the visitor returns false to prune.
func walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(uint(i)), visitor)
	}
}
