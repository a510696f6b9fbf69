package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/code-atlas/internal/grammar"
	"github.com/mvp-joe/code-atlas/internal/lang"
)

// importKinds maps languages to the directionality-free kind tag carried on
// their import edges. Languages not listed use "import".
var importKinds = map[lang.Language]string{
	lang.LangC:    "include",
	lang.LangRust: "use",
	lang.LangRuby: "require",
	lang.LangGo:   "import",
}

// Engine runs the three canonical query classes over a file and normalizes
// the results into one language-independent Record. It is a single generic
// interpreter over the per-language query bundles; there is no per-language
// extraction code.
type Engine struct {
	reg *grammar.Registry
}

// NewEngine creates an extraction engine backed by a grammar registry.
func NewEngine(reg *grammar.Registry) *Engine {
	return &Engine{reg: reg}
}

// Extract produces the Record for one file. A tree containing parser-error
// nodes still yields extraction from the parseable subtree, with
// ParseSuccess=false. A capability gap (no grammar) falls back to the
// degraded regex path, never an error.
func (e *Engine) Extract(ctx context.Context, relPath string, src []byte, l lang.Language) (*Record, error) {
	rec := &Record{
		File:         relPath,
		Language:     l,
		ContentHash:  hashContent(src),
		ParseSuccess: true,
		Imports:      []ImportEdge{},
		Definitions:  []DefinitionSymbol{},
		Calls:        []CallEdge{},
	}

	tree, err := e.reg.Parse(l, src)
	if errors.Is(err, grammar.ErrNoGrammar) {
		fallbackExtract(rec, src)
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	rec.ParseSuccess = !root.HasError()
	rec.Metrics = computeMetrics(l, root, src)

	for _, class := range queryClasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, ok := queryText(l, class)
		if !ok {
			continue // no query for this class: zero records, not an error
		}
		q, err := e.reg.Query(l, string(class), text)
		if err != nil {
			return nil, fmt.Errorf("query %s/%s: %w", l, class, err)
		}
		e.runQuery(rec, class, q, root, src)
	}
	return rec, nil
}

// runQuery executes one compiled query and folds its captures into the
// record. Capture naming convention: a main capture names the record kind
// ("import", "function", "call", ...) and sub-captures carry ".name" or
// ".module" suffixes. Helper captures start with "_" and are skipped.
func (e *Engine) runQuery(rec *Record, class QueryClass, q *sitter.Query, root *sitter.Node, src []byte) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	captureNames := q.CaptureNames()
	matches := qc.Matches(q, root, src)

	for {
		match := matches.Next()
		if match == nil {
			return
		}

		var main *sitter.Node
		mainKind := ""
		subs := make(map[string]string, 2)
		for i := range match.Captures {
			c := &match.Captures[i]
			name := captureNames[c.Index]
			if strings.HasPrefix(name, "_") {
				continue
			}
			if idx := strings.IndexByte(name, '.'); idx >= 0 {
				subs[name[idx+1:]] = nodeText(&c.Node, src)
				continue
			}
			node := c.Node
			main = &node
			mainKind = name
		}
		if main == nil {
			continue
		}
		line := int(main.StartPosition().Row) + 1

		switch class {
		case QueryImports:
			raw := normalizeModule(subs["module"])
			if raw == "" {
				continue
			}
			kind := importKinds[rec.Language]
			if kind == "" {
				kind = "import"
			}
			rec.Imports = append(rec.Imports, ImportEdge{
				File: rec.File,
				Raw:  raw,
				Line: line,
				Kind: kind,
			})

		case QueryDefinitions:
			name := subs["name"]
			if name == "" {
				continue
			}
			rec.Definitions = append(rec.Definitions, DefinitionSymbol{
				Name:      name,
				Kind:      mainKind,
				StartLine: line,
				EndLine:   int(main.EndPosition().Row) + 1,
				Scope:     enclosingDefinition(rec.Language, main, src),
			})

		case QueryCalls:
			callee := subs["name"]
			if callee == "" {
				continue
			}
			caller := enclosingDefinition(rec.Language, main, src)
			if caller == "" {
				caller = ModuleScope
			}
			rec.Calls = append(rec.Calls, CallEdge{
				Caller: caller,
				Callee: callee,
				Line:   line,
			})
		}
	}
}

// enclosingDefinition walks up from a node to the nearest definition scope
// and returns its name, best-effort. Empty means top level.
func enclosingDefinition(l lang.Language, node *sitter.Node, src []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if !definitionKind(l, p.Kind()) {
			continue
		}
		if nameNode := p.ChildByFieldName("name"); nameNode != nil {
			return nodeText(nameNode, src)
		}
		// C nests the name inside the declarator.
		if decl := p.ChildByFieldName("declarator"); decl != nil {
			if inner := decl.ChildByFieldName("declarator"); inner != nil {
				return nodeText(inner, src)
			}
		}
	}
	return ""
}

// normalizeModule strips string quoting and include brackets from a raw
// module reference.
func normalizeModule(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return strings.TrimSpace(s)
}

func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

func hashContent(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}
