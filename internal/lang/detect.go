package lang

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
)

// SampleSize is the maximum number of bytes Detect inspects. Callers pass a
// bounded prefix of the file; Detect never reads from disk itself.
const SampleSize = 8 * 1024

// hint expresses a content pattern that argues for a language.
type hint struct {
	re     *regexp.Regexp
	weight int
}

// contentHints drive tier-3 statistical classification for extensionless
// files. Weights are relative; the highest scoring language above
// minHintScore wins.
var contentHints = map[Language][]hint{
	LangPython: {
		{regexp.MustCompile(`(?m)^\s*def \w+\(`), 2},
		{regexp.MustCompile(`(?m)^\s*import \w+`), 1},
		{regexp.MustCompile(`(?m)^\s*from \w+ import `), 2},
		{regexp.MustCompile(`(?m)^\s*class \w+.*:`), 1},
	},
	LangRuby: {
		{regexp.MustCompile(`(?m)^\s*def \w+\s*$`), 2},
		{regexp.MustCompile(`(?m)^\s*require ['"]`), 2},
		{regexp.MustCompile(`(?m)^end\s*$`), 1},
	},
	LangPHP: {
		{regexp.MustCompile(`<\?php`), 4},
		{regexp.MustCompile(`(?m)^\s*namespace \w+`), 1},
	},
	LangJavaScript: {
		{regexp.MustCompile(`(?m)^\s*const \w+ = require\(`), 2},
		{regexp.MustCompile(`(?m)^\s*function \w+\(`), 1},
		{regexp.MustCompile(`=>\s*{`), 1},
	},
	LangShell: {
		{regexp.MustCompile(`(?m)^\s*if \[\[? `), 2},
		{regexp.MustCompile(`(?m)^\s*fi\s*$`), 1},
		{regexp.MustCompile(`\$\{\w+\}`), 1},
	},
	LangGo: {
		{regexp.MustCompile(`(?m)^package \w+$`), 2},
		{regexp.MustCompile(`(?m)^func \w+\(`), 2},
	},
}

// minHintScore is the tier-3 acceptance threshold. Below it the file stays
// unclassified rather than being guessed at.
const minHintScore = 2

// Detect determines the language of a file from its path and a bounded
// content sample. It is pure: same inputs, same answer.
//
// Tier 1 is an extension lookup, tier 2 matches shebang lines and the PHP
// open tag, tier 3 scores content heuristics. The boolean reports whether
// any tier produced an answer.
func Detect(path string, sample []byte) (Language, bool) {
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	if ext := filepath.Ext(path); ext != "" {
		if l, ok := extensionMap[strings.ToLower(ext)]; ok {
			return l, true
		}
	}

	if IsBinary(sample) {
		return LangUnknown, false
	}

	if l, ok := detectShebang(sample); ok {
		return l, true
	}

	if l, ok := detectContent(sample); ok {
		return l, true
	}

	return LangUnknown, false
}

// detectShebang handles tier 2: interpreter lines and language tags.
func detectShebang(sample []byte) (Language, bool) {
	if bytes.Contains(sample[:minInt(len(sample), 64)], []byte("<?php")) {
		return LangPHP, true
	}
	if !bytes.HasPrefix(sample, []byte("#!")) {
		return LangUnknown, false
	}
	line := sample
	if idx := bytes.IndexByte(sample, '\n'); idx >= 0 {
		line = sample[:idx]
	}
	fields := strings.Fields(string(line[2:]))
	if len(fields) == 0 {
		return LangUnknown, false
	}
	interp := filepath.Base(fields[0])
	// `#!/usr/bin/env python3` puts the interpreter in the first argument.
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	// Strip version suffixes like ruby2.7.
	interp = strings.TrimRight(interp, "0123456789.")
	if l, ok := shebangMap[interp]; ok {
		return l, true
	}
	if l, ok := shebangMap[interp+"3"]; ok {
		return l, true
	}
	return LangUnknown, false
}

// detectContent handles tier 3: statistical scoring over the sample.
func detectContent(sample []byte) (Language, bool) {
	best := LangUnknown
	bestScore := 0
	for _, l := range All() {
		score := 0
		for _, h := range contentHints[l] {
			score += len(h.re.FindAll(sample, 8)) * h.weight
		}
		if score > bestScore {
			best, bestScore = l, score
		}
	}
	if bestScore < minHintScore {
		return LangUnknown, false
	}
	return best, true
}

// IsBinary reports whether a sample looks like binary content. A NUL byte in
// the prefix is treated as conclusive.
func IsBinary(sample []byte) bool {
	return bytes.IndexByte(sample[:minInt(len(sample), 1024)], 0) >= 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
