// Package schemas embeds the JSON Schema documents for acquire's files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the JSON Schema for .acquire.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
