// Package cases loads clinical practice cases and their reference
// reasoning graphs from YAML.
package cases

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/validate"
)

var (
	// ErrInvalidCase wraps every load or validation failure.
	ErrInvalidCase = errors.New("invalid case")
	// ErrNotFound is returned by Library.Get for unknown ids.
	ErrNotFound = errors.New("case not found")
)

// Case is one clinical scenario with its expert reasoning.
type Case struct {
	ID           string             `yaml:"id" json:"id" validate:"required"`
	Title        string             `yaml:"title" json:"title" validate:"required"`
	Presentation string             `yaml:"presentation" json:"presentation" validate:"required"`
	Treatments   []string           `yaml:"treatments" json:"treatments" validate:"unique,dive,required"`
	Reference    []blockgraph.Block `yaml:"reference" json:"reference" validate:"required,min=1"`

	graph *blockgraph.Graph
}

// Parse decodes and validates a case. Unknown YAML fields are rejected.
func Parse(data []byte) (*Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Case
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCase, err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Case) init() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCase, c.ID, err)
	}
	for _, b := range c.Reference {
		if _, ok := blockgraph.ParseKind(string(b.Kind)); !ok {
			return fmt.Errorf("%w %q: block %q has unknown kind %q", ErrInvalidCase, c.ID, b.ID, b.Kind)
		}
	}
	g, err := blockgraph.New(c.Reference)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCase, c.ID, err)
	}
	// Reference graphs are authored by hand, so a dangling edge is a typo.
	for _, issue := range g.Issues() {
		if issue.Kind == blockgraph.IssueDanglingEdge {
			return fmt.Errorf("%w %q: %s", ErrInvalidCase, c.ID, issue)
		}
	}
	c.graph = g
	c.Reference = g.Blocks()
	return nil
}

// Graph returns the reference graph.
func (c *Case) Graph() *blockgraph.Graph {
	return c.graph
}

// Context is the case summary handed to the classifier.
func (c *Case) Context() string {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(c.Presentation))
	if len(c.Treatments) > 0 {
		b.WriteString("\n\nAvailable treatments: ")
		b.WriteString(strings.Join(c.Treatments, ", "))
	}
	return b.String()
}

// HasTreatment reports whether name is one of the case's treatments.
func (c *Case) HasTreatment(name string) bool {
	for _, t := range c.Treatments {
		if t == name {
			return true
		}
	}
	return false
}
