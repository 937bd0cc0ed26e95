// Richmd converts rich text between Markdown and HTML and dumps the
// document model.
//
// Usage:
//
//	richmd [-d] [-from md|html] [-to md|html|text|runs|words] [-dict words] [file]
//
// With no file, richmd reads standard input. With -dict, misspelled words
// are marked before the output is written.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "richmd: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
