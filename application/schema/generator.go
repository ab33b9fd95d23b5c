// Package schema generates JSON schemas for websg configuration files.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

type generatorConfig struct {
	id          string
	title       string
	description string
}

// Option configures GenerateSchema.
type Option func(*generatorConfig)

// WithID sets the schema's $id.
func WithID(id string) Option {
	return func(c *generatorConfig) {
		c.id = id
	}
}

// WithTitle sets the schema title and description.
func WithTitle(title, description string) Option {
	return func(c *generatorConfig) {
		c.title = title
		c.description = description
	}
}

// GenerateSchema reflects v into an indented JSON Schema (Draft 2020-12).
// The top-level struct is expanded inline; nested structs are emitted as
// $defs. Unknown properties are rejected.
func GenerateSchema(v any, opts ...Option) ([]byte, error) {
	var cfg generatorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)
	if cfg.id != "" {
		schema.ID = jsonschema.ID(cfg.id)
	}
	if cfg.title != "" {
		schema.Title = cfg.title
		schema.Description = cfg.description
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}
