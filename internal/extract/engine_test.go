package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/code-atlas/internal/grammar"
	"github.com/mvp-joe/code-atlas/internal/lang"
)

// Test Plan for Engine.Extract:
// - Python file yields imports, definitions with scope, calls with caller
// - Relative Python imports keep their leading dots
// - TypeScript file yields ES imports and class/function definitions
// - Syntax errors yield ParseSuccess=false plus partial extraction
// - Capability-gap languages go through the degraded path, never error
// - C extracts includes and functions but contributes zero calls
// - Same content yields identical records (id stability upstream)
// - Metrics count lines, functions and classes

func newEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := grammar.NewRegistry()
	require.NoError(t, err)
	t.Cleanup(reg.Close)
	return NewEngine(reg)
}

func TestExtract_Python(t *testing.T) {
	t.Parallel()

	src := []byte(`import os
from collections import OrderedDict

def helper():
    return os.getcwd()

class Runner:
    def run(self):
        helper()
`)
	rec, err := newEngine(t).Extract(context.Background(), "app/main.py", src, lang.LangPython)
	require.NoError(t, err)

	assert.True(t, rec.ParseSuccess)
	assert.False(t, rec.Degraded)
	assert.NotEmpty(t, rec.ContentHash)

	require.Len(t, rec.Imports, 2)
	assert.Equal(t, "os", rec.Imports[0].Raw)
	assert.Equal(t, "collections", rec.Imports[1].Raw)
	assert.Equal(t, 1, rec.Imports[0].Line)

	names := map[string]string{}
	for _, d := range rec.Definitions {
		names[d.Name] = d.Kind
	}
	assert.Equal(t, "function", names["helper"])
	assert.Equal(t, "class", names["Runner"])
	assert.Equal(t, "function", names["run"])

	// run() lives inside Runner.
	for _, d := range rec.Definitions {
		if d.Name == "run" {
			assert.Equal(t, "Runner", d.Scope)
		}
	}

	// helper() is called from run.
	var sawCall bool
	for _, c := range rec.Calls {
		if c.Callee == "helper" {
			sawCall = true
			assert.Equal(t, "run", c.Caller)
		}
	}
	assert.True(t, sawCall, "expected a call edge to helper")
}

func TestExtract_PythonRelativeImport(t *testing.T) {
	t.Parallel()

	src := []byte("from .sibling import thing\nfrom ..pkg import other\n")
	rec, err := newEngine(t).Extract(context.Background(), "pkg/mod.py", src, lang.LangPython)
	require.NoError(t, err)

	raws := []string{}
	for _, imp := range rec.Imports {
		raws = append(raws, imp.Raw)
	}
	assert.Contains(t, raws, ".sibling")
	assert.Contains(t, raws, "..pkg")
}

func TestExtract_TypeScript(t *testing.T) {
	t.Parallel()

	src := []byte(`import { api } from './api';
import fs from 'fs';

export function start(): void {
  api.connect();
}

export class Server {
  stop(): void {}
}
`)
	rec, err := newEngine(t).Extract(context.Background(), "src/server.ts", src, lang.LangTypeScript)
	require.NoError(t, err)

	assert.True(t, rec.ParseSuccess)
	raws := []string{}
	for _, imp := range rec.Imports {
		raws = append(raws, imp.Raw)
	}
	assert.Contains(t, raws, "./api")
	assert.Contains(t, raws, "fs")

	names := map[string]bool{}
	for _, d := range rec.Definitions {
		names[d.Name] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["Server"])
}

func TestExtract_PartialOnSyntaxError(t *testing.T) {
	t.Parallel()

	// Test: the broken tail must not suppress the parseable head
	src := []byte(`import os

def good():
    return 1

def broken(:
`)
	rec, err := newEngine(t).Extract(context.Background(), "bad.py", src, lang.LangPython)
	require.NoError(t, err)

	assert.False(t, rec.ParseSuccess)
	require.NotEmpty(t, rec.Imports)
	assert.Equal(t, "os", rec.Imports[0].Raw)

	var sawGood bool
	for _, d := range rec.Definitions {
		if d.Name == "good" {
			sawGood = true
		}
	}
	assert.True(t, sawGood, "definitions before the error should survive")
}

func TestExtract_DegradedGo(t *testing.T) {
	t.Parallel()

	src := []byte(`package main

import (
	"fmt"
	"os"
)

type Config struct {
	Name string
}

func main() {
	fmt.Println(os.Args)
}
`)
	rec, err := newEngine(t).Extract(context.Background(), "main.go", src, lang.LangGo)
	require.NoError(t, err)

	assert.True(t, rec.Degraded)
	assert.True(t, rec.ParseSuccess)

	raws := []string{}
	for _, imp := range rec.Imports {
		raws = append(raws, imp.Raw)
	}
	assert.ElementsMatch(t, []string{"fmt", "os"}, raws)

	names := map[string]string{}
	for _, d := range rec.Definitions {
		names[d.Name] = d.Kind
	}
	assert.Equal(t, "function", names["main"])
	assert.Equal(t, "struct", names["Config"])
}

func TestExtract_DegradedShell(t *testing.T) {
	t.Parallel()

	src := []byte(`#!/bin/bash
source ./lib/common.sh

deploy() {
  echo deploying
}
`)
	rec, err := newEngine(t).Extract(context.Background(), "deploy.sh", src, lang.LangShell)
	require.NoError(t, err)

	assert.True(t, rec.Degraded)
	require.Len(t, rec.Imports, 1)
	assert.Equal(t, "./lib/common.sh", rec.Imports[0].Raw)
	assert.Equal(t, "source", rec.Imports[0].Kind)

	require.Len(t, rec.Definitions, 1)
	assert.Equal(t, "deploy", rec.Definitions[0].Name)
}

func TestExtract_CNoCalls(t *testing.T) {
	t.Parallel()

	// Test: C has no calls query; the class contributes zero records
	src := []byte(`#include <stdio.h>
#include "util.h"

int add(int a, int b) {
	return a + b;
}
`)
	rec, err := newEngine(t).Extract(context.Background(), "src/add.c", src, lang.LangC)
	require.NoError(t, err)

	assert.True(t, rec.ParseSuccess)
	raws := []string{}
	for _, imp := range rec.Imports {
		raws = append(raws, imp.Raw)
	}
	assert.Contains(t, raws, "stdio.h")
	assert.Contains(t, raws, "util.h")
	assert.Equal(t, "include", rec.Imports[0].Kind)

	var sawAdd bool
	for _, d := range rec.Definitions {
		if d.Name == "add" {
			sawAdd = true
		}
	}
	assert.True(t, sawAdd)
	assert.Empty(t, rec.Calls)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	src := []byte("import os\n\ndef f():\n    return os.sep\n")
	e := newEngine(t)
	first, err := e.Extract(context.Background(), "f.py", src, lang.LangPython)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), "f.py", src, lang.LangPython)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_Metrics(t *testing.T) {
	t.Parallel()

	src := []byte("def a():\n    pass\n\ndef b():\n    pass\n\nclass C:\n    pass\n")
	rec, err := newEngine(t).Extract(context.Background(), "m.py", src, lang.LangPython)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Metrics.Functions)
	assert.Equal(t, 1, rec.Metrics.Classes)
	assert.Greater(t, rec.Metrics.Lines, 0)
}

func TestHasQueries(t *testing.T) {
	t.Parallel()

	assert.True(t, HasQueries(lang.LangPython))
	assert.True(t, HasQueries(lang.LangC))
	assert.False(t, HasQueries(lang.LangGo))
	assert.False(t, HasQueries(lang.LangShell))
}
