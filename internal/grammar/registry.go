package grammar

import (
	"errors"
	"fmt"
	"sync"

	"github.com/maypok86/otter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/code-atlas/internal/lang"
)

// ErrNoGrammar reports a capability gap: the language is known to the
// classifier but no grammar is bundled for it. Callers degrade to a weaker
// extraction path instead of failing the scan.
var ErrNoGrammar = errors.New("no grammar for language")

// queryCacheCapacity bounds the compiled-query cache. Three query classes
// per language keeps actual usage far below this.
const queryCacheCapacity = 128

// constructors maps languages to their grammar factories. Nothing here is
// instantiated until Preload or first Parse asks for it.
var constructors = map[lang.Language]func() *sitter.Language{
	lang.LangC:      func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
	lang.LangJava:   func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
	lang.LangPHP:    func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
	lang.LangPython: func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
	lang.LangRuby:   func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
	lang.LangRust:   func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
	// The TypeScript grammar also parses plain JavaScript sources.
	lang.LangTypeScript: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
	lang.LangJavaScript: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
}

// Registry owns grammar and compiled-query lifecycles for one scan
// generation. It is process-wide state with explicit init and teardown:
// create it, Preload the languages the manifest reports, Close it at
// generation end. Independent scans never share a Registry.
//
// Grammars and compiled queries are safe for concurrent reads after
// Preload; the lazy insert-on-miss paths are single-writer-locked. Parser
// objects are never shared: every Parse call owns its parser.
type Registry struct {
	mu      sync.Mutex
	langs   map[lang.Language]*sitter.Language
	queries otter.Cache[string, *sitter.Query]

	// owned tracks every compiled query for teardown, since cache eviction
	// does not release tree-sitter objects.
	owned []*sitter.Query
}

// NewRegistry creates an empty registry. No grammar is instantiated yet.
func NewRegistry() (*Registry, error) {
	cache, err := otter.MustBuilder[string, *sitter.Query](queryCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query cache: %w", err)
	}
	return &Registry{
		langs:   make(map[lang.Language]*sitter.Language),
		queries: cache,
	}, nil
}

// Supported reports whether a grammar is bundled for the language.
func Supported(l lang.Language) bool {
	_, ok := constructors[l]
	return ok
}

// Preload warms the registry for exactly the given language set. Languages
// without a grammar are returned as gaps; nothing outside the set is ever
// instantiated, which bounds memory to the languages actually present.
func (r *Registry) Preload(languages []lang.Language) (gaps []lang.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range languages {
		ctor, ok := constructors[l]
		if !ok {
			gaps = append(gaps, l)
			continue
		}
		if _, loaded := r.langs[l]; !loaded {
			r.langs[l] = ctor()
		}
	}
	return gaps
}

// Language returns the grammar for a language, instantiating it on first
// use if it was not preloaded.
func (r *Registry) Language(l lang.Language) (*sitter.Language, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.langs[l]; ok {
		return g, nil
	}
	ctor, ok := constructors[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, l)
	}
	g := ctor()
	r.langs[l] = g
	return g, nil
}

// Parse parses source bytes with the grammar for the given language. The
// returned tree is owned by the caller and must be closed; trees are meant
// to be produced and consumed within a single extraction call, never
// retained across files.
func (r *Registry) Parse(l lang.Language, src []byte) (*sitter.Tree, error) {
	g, err := r.Language(l)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree for %s source", l)
	}
	return tree, nil
}

// Query compiles a query against a language's grammar, cached per
// (language, name) so repeated extraction never recompiles. The cache is
// read-mostly after preload; the miss path holds the registry lock so
// concurrent workers cannot double-insert.
func (r *Registry) Query(l lang.Language, name, text string) (*sitter.Query, error) {
	key := string(l) + "/" + name
	if q, ok := r.queries.Get(key); ok {
		return q, nil
	}

	g, err := r.Language(l)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another worker may have compiled it while we waited on the lock.
	if q, ok := r.queries.Get(key); ok {
		return q, nil
	}
	q, qerr := sitter.NewQuery(g, text)
	if q == nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %v", name, l, qerr)
	}
	r.owned = append(r.owned, q)
	r.queries.Set(key, q)
	return q, nil
}

// Close drops every grammar and compiled query. The registry must not be
// used afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.owned {
		q.Close()
	}
	r.owned = nil
	r.queries.Close()
	r.langs = make(map[lang.Language]*sitter.Language)
}
