package extract

import (
	"embed"
	"fmt"

	"github.com/mvp-joe/code-atlas/internal/lang"
)

// QueryClass names one of the three canonical extraction query classes.
type QueryClass string

const (
	QueryImports     QueryClass = "imports"
	QueryDefinitions QueryClass = "definitions"
	QueryCalls       QueryClass = "calls"
)

// queryClasses is the fixed evaluation order for a file.
var queryClasses = []QueryClass{QueryImports, QueryDefinitions, QueryCalls}

//go:embed queries
var queryFS embed.FS

// queryText returns the query source for (language, class). A language
// lacking a query file for a class simply has no query; that class then
// contributes zero records for the file.
func queryText(l lang.Language, class QueryClass) (string, bool) {
	data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s/%s.scm", l, class))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// HasQueries reports whether any query bundle exists for the language.
func HasQueries(l lang.Language) bool {
	for _, class := range queryClasses {
		if _, ok := queryText(l, class); ok {
			return true
		}
	}
	return false
}
