package extract

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/code-atlas/internal/lang"
)

// The degraded path covers capability-gap languages: no grammar, so imports
// and top-level definitions are pulled with line-oriented patterns. It is
// deliberately conservative; anything it cannot see simply goes unreported.

var (
	goImportLine  = regexp.MustCompile(`^\s*(?:\w+\s+)?"([^"]+)"\s*$`)
	goImportOne   = regexp.MustCompile(`^import\s+(?:\w+\s+)?"([^"]+)"`)
	goFuncDef     = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?(\w+)\s*\(`)
	goTypeDef     = regexp.MustCompile(`^type\s+(\w+)\s+(struct|interface)\b`)
	shellSource   = regexp.MustCompile(`^\s*(?:source|\.)\s+(\S+)`)
	shellFunction = regexp.MustCompile(`^\s*(?:function\s+)?(\w+)\s*\(\)\s*\{`)
)

// fallbackExtract fills a record for a language without a grammar. The
// record is flagged Degraded; ParseSuccess stays true since no parser ran.
func fallbackExtract(rec *Record, src []byte) {
	rec.Degraded = true
	rec.Metrics.Lines = countLines(src)

	switch rec.Language {
	case lang.LangGo:
		fallbackGo(rec, src)
	case lang.LangShell:
		fallbackShell(rec, src)
	}
}

func fallbackGo(rec *Record, src []byte) {
	inImportBlock := false
	for i, line := range strings.Split(string(src), "\n") {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inImportBlock = true
		case inImportBlock && trimmed == ")":
			inImportBlock = false
		case inImportBlock:
			if m := goImportLine.FindStringSubmatch(line); m != nil {
				rec.Imports = append(rec.Imports, ImportEdge{File: rec.File, Raw: m[1], Line: n, Kind: "import"})
			}
		default:
			if m := goImportOne.FindStringSubmatch(line); m != nil {
				rec.Imports = append(rec.Imports, ImportEdge{File: rec.File, Raw: m[1], Line: n, Kind: "import"})
			}
		}
		if m := goFuncDef.FindStringSubmatch(line); m != nil {
			rec.Definitions = append(rec.Definitions, DefinitionSymbol{Name: m[1], Kind: "function", StartLine: n, EndLine: n})
			rec.Metrics.Functions++
		}
		if m := goTypeDef.FindStringSubmatch(line); m != nil {
			kind := m[2]
			rec.Definitions = append(rec.Definitions, DefinitionSymbol{Name: m[1], Kind: kind, StartLine: n, EndLine: n})
			rec.Metrics.Classes++
		}
	}
}

func fallbackShell(rec *Record, src []byte) {
	for i, line := range strings.Split(string(src), "\n") {
		n := i + 1
		if m := shellSource.FindStringSubmatch(line); m != nil {
			rec.Imports = append(rec.Imports, ImportEdge{File: rec.File, Raw: m[1], Line: n, Kind: "source"})
		}
		if m := shellFunction.FindStringSubmatch(line); m != nil {
			rec.Definitions = append(rec.Definitions, DefinitionSymbol{Name: m[1], Kind: "function", StartLine: n, EndLine: n})
			rec.Metrics.Functions++
		}
	}
}
