package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/satchelhq/satchel/pkg/core"
)

const (
	blobExtension = ".json"
	blobMIMEType  = "application/json"
)

// SettingsBlobName is the reserved root-folder blob that carries the
// organizing-scheme preference. It is never treated as an item.
const SettingsBlobName = "satchel.settings.json"

// itemSchemaSource validates the structural essentials of an item blob
// before decoding. Blobs written by other tools into the same folders
// are common; anything that fails here is skipped, not fatal.
const itemSchemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "scheme", "version", "content"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "scheme": {"enum": ["freeform", "cohort", "roster"]},
    "version": {"type": "integer", "minimum": 1},
    "content": {"type": "string"}
  }
}`

var itemSchema = compileItemSchema()

func compileItemSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(itemSchemaSource))
	if err != nil {
		panic(fmt.Sprintf("item schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("item.schema.json", doc); err != nil {
		panic(fmt.Sprintf("item schema: %v", err))
	}
	schema, err := compiler.Compile("item.schema.json")
	if err != nil {
		panic(fmt.Sprintf("item schema: %v", err))
	}
	return schema
}

func encodeItem(it core.Item) ([]byte, error) {
	return json.MarshalIndent(it, "", "  ")
}

func decodeItem(data []byte) (core.Item, error) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return core.Item{}, fmt.Errorf("invalid item blob: %w", err)
	}
	if err := itemSchema.Validate(value); err != nil {
		return core.Item{}, fmt.Errorf("item blob rejected: %w", err)
	}
	var it core.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return core.Item{}, fmt.Errorf("invalid item blob: %w", err)
	}
	// Derived names are recomputed, never trusted from the wire.
	it.Refresh()
	return it, nil
}

func blobName(it core.Item) string {
	return it.InternalName + blobExtension
}

type settingsPayload struct {
	Scheme core.Scheme `json:"scheme"`
}

func encodeSettings(scheme core.Scheme) ([]byte, error) {
	return json.MarshalIndent(settingsPayload{Scheme: scheme}, "", "  ")
}

func decodeSettings(data []byte) (core.Scheme, error) {
	var p settingsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("invalid settings blob: %w", err)
	}
	if !p.Scheme.Valid() {
		return "", fmt.Errorf("invalid settings blob: %w", core.ErrInvalidScheme)
	}
	return p.Scheme, nil
}
