package lang

// Language identifies a source language understood by the engine.
type Language string

const (
	LangC          Language = "c"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangPHP        Language = "php"
	LangPython     Language = "python"
	LangRuby       Language = "ruby"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"

	// Languages recognized by the classifier but without a bundled grammar.
	// Files in these languages go through the degraded extraction path.
	LangGo    Language = "go"
	LangShell Language = "shell"

	LangUnknown Language = ""
)

// extensionMap is the tier-1 lookup table. It covers the vast majority of
// real trees; shebang and content classification only run when it misses.
var extensionMap = map[string]Language{
	".c":     LangC,
	".h":     LangC,
	".java":  LangJava,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".php":   LangPHP,
	".phtml": LangPHP,
	".py":    LangPython,
	".pyi":   LangPython,
	".rb":    LangRuby,
	".rake":  LangRuby,
	".rs":    LangRust,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".go":    LangGo,
	".sh":    LangShell,
	".bash":  LangShell,
}

// shebangMap maps interpreter names found on a #! line to languages.
var shebangMap = map[string]Language{
	"python":  LangPython,
	"python3": LangPython,
	"ruby":    LangRuby,
	"node":    LangJavaScript,
	"php":     LangPHP,
	"sh":      LangShell,
	"bash":    LangShell,
	"zsh":     LangShell,
}

// All returns every language the classifier can report.
func All() []Language {
	return []Language{
		LangC, LangJava, LangJavaScript, LangPHP, LangPython,
		LangRuby, LangRust, LangTypeScript, LangGo, LangShell,
	}
}

// FromExtension returns the language for a file extension, or LangUnknown.
func FromExtension(ext string) Language {
	return extensionMap[ext]
}
