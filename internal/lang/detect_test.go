package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Detect:
// - Extension lookup wins regardless of content
// - Extension lookup is case-insensitive
// - Shebang classifies extensionless scripts, including env indirection
// - Version-suffixed interpreters (python3, ruby2.7) still classify
// - PHP open tag classifies .inc-style files without extension help
// - Content heuristics classify extensionless Python and Shell
// - Weak content evidence stays unclassified instead of guessing
// - Binary samples are never classified
// - Same input always produces the same answer

func TestDetect_Extension(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want Language
	}{
		{"main.py", LangPython},
		{"lib/foo.rb", LangRuby},
		{"src/app.ts", LangTypeScript},
		{"src/App.tsx", LangTypeScript},
		{"index.js", LangJavaScript},
		{"util.mjs", LangJavaScript},
		{"Server.java", LangJava},
		{"parse.c", LangC},
		{"parse.h", LangC},
		{"main.rs", LangRust},
		{"index.php", LangPHP},
		{"main.go", LangGo},
		{"deploy.sh", LangShell},
	}
	for _, tc := range cases {
		got, ok := Detect(tc.path, nil)
		require.True(t, ok, "expected %s to classify", tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestDetect_ExtensionCaseInsensitive(t *testing.T) {
	t.Parallel()

	got, ok := Detect("LEGACY.PY", nil)
	require.True(t, ok)
	assert.Equal(t, LangPython, got)
}

func TestDetect_ExtensionBeatsContent(t *testing.T) {
	t.Parallel()

	// Test: a .py file full of Ruby-looking content is still Python
	sample := []byte("require 'json'\ndef run\nend\n")
	got, ok := Detect("script.py", sample)
	require.True(t, ok)
	assert.Equal(t, LangPython, got)
}

func TestDetect_Shebang(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		sample string
		want   Language
	}{
		{"direct python", "#!/usr/bin/python\nprint('hi')\n", LangPython},
		{"env python3", "#!/usr/bin/env python3\nprint('hi')\n", LangPython},
		{"env node", "#!/usr/bin/env node\nconsole.log(1)\n", LangJavaScript},
		{"bash", "#!/bin/bash\nset -e\n", LangShell},
		{"versioned ruby", "#!/usr/bin/ruby2.7\nputs 1\n", LangRuby},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Detect("bin/run", []byte(tc.sample))
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetect_PHPOpenTag(t *testing.T) {
	t.Parallel()

	got, ok := Detect("templates/header", []byte("<?php\nnamespace App;\n"))
	require.True(t, ok)
	assert.Equal(t, LangPHP, got)
}

func TestDetect_ContentHeuristics(t *testing.T) {
	t.Parallel()

	python := []byte("import os\nfrom sys import argv\n\ndef main():\n    pass\n")
	got, ok := Detect("scripts/tool", python)
	require.True(t, ok)
	assert.Equal(t, LangPython, got)

	shell := []byte("if [ -z \"$1\" ]; then\n  exit 1\nfi\necho ${HOME}\n")
	got, ok = Detect("scripts/setup", shell)
	require.True(t, ok)
	assert.Equal(t, LangShell, got)
}

func TestDetect_WeakEvidenceUnclassified(t *testing.T) {
	t.Parallel()

	// Test: plain prose must not classify as any language
	_, ok := Detect("NOTES", []byte("just some notes\nabout the project\n"))
	assert.False(t, ok)
}

func TestDetect_Binary(t *testing.T) {
	t.Parallel()

	sample := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0x02}
	_, ok := Detect("bin/tool", sample)
	assert.False(t, ok)
}

func TestDetect_Deterministic(t *testing.T) {
	t.Parallel()

	sample := []byte("import os\n\ndef main():\n    pass\n")
	first, ok1 := Detect("tool", sample)
	require.True(t, ok1)
	for i := 0; i < 10; i++ {
		got, ok := Detect("tool", sample)
		require.True(t, ok)
		assert.Equal(t, first, got)
	}
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBinary([]byte{'a', 0x00, 'b'}))
	assert.False(t, IsBinary([]byte("plain text")))
	assert.False(t, IsBinary(nil))
}
