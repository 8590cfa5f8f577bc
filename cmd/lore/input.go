package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-lore/internal/markdown"
)

// readSource reads a card body from file, or from in when file is "" or "-".
// A leading front matter block is split off.
func readSource(in io.Reader, file string) (*markdown.Source, error) {
	if strings.TrimSpace(file) != "" && file != "-" {
		return markdown.LoadSource(file)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	meta, body, err := markdown.ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	return &markdown.Source{Path: "-", FrontMatter: meta, Body: string(body)}, nil
}
