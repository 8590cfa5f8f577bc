package markdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block that may lead a card file on disk.
type FrontMatter struct {
	Title  string         `yaml:"title" json:"title"`
	ID     string         `yaml:"id" json:"id"`
	Scope  string         `yaml:"scope" json:"scope"`
	Tags   []string       `yaml:"tags" json:"tags"`
	Custom map[string]any `yaml:",inline" json:"custom"`
}

// Source is a serialized body read from a file together with its metadata.
type Source struct {
	Path        string
	FrontMatter FrontMatter
	Body        string
}

// ParseFrontMatter splits source into front matter and the serialized body.
// Sources without a front matter block return an empty FrontMatter.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// LoadSource reads a card file from disk.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	return &Source{
		Path:        path,
		FrontMatter: meta,
		Body:        string(body),
	}, nil
}
