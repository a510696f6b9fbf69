package main

import "github.com/mvp-joe/code-atlas/internal/cli"

func main() {
	cli.Execute()
}
