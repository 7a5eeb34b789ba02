// Package content holds the editorial configuration of the newsletter: the
// author persona, the topic pool, decoration sets and the feed sources.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Content validation errors.
var (
	ErrNoTopics    = errors.New("content: at least one topic is required")
	ErrNoEmojis    = errors.New("content: at least one emoji is required")
	ErrNoGradients = errors.New("content: at least one gradient is required")
	ErrNoAuthor    = errors.New("content: author is required")
)

// Content is the static editorial input of a run.
type Content struct {
	Author    string   `yaml:"author"`
	Persona   string   `yaml:"persona"`
	Topics    []string `yaml:"topics"`
	Emojis    []string `yaml:"emojis"`
	Gradients []string `yaml:"gradients"`
	Feeds     []string `yaml:"feeds"`
	Keywords  []string `yaml:"keywords"`
}

// Default returns the embedded content set.
func Default() (*Content, error) {
	return Parse(defaultYAML)
}

// Load reads content from path. An empty path yields the embedded defaults.
func Load(path string) (*Content, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	c.Topics = compact(c.Topics)
	c.Emojis = compact(c.Emojis)
	c.Gradients = compact(c.Gradients)
	c.Feeds = compact(c.Feeds)
	c.Keywords = compact(c.Keywords)
	c.Author = strings.TrimSpace(c.Author)
	c.Persona = strings.TrimSpace(c.Persona)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the fields every mode relies on.
func (c *Content) Validate() error {
	switch {
	case c.Author == "":
		return ErrNoAuthor
	case len(c.Topics) == 0:
		return ErrNoTopics
	case len(c.Emojis) == 0:
		return ErrNoEmojis
	case len(c.Gradients) == 0:
		return ErrNoGradients
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
