package api

// nolint: lll
var itemsSchemaBytes = []byte(`
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"$id": "github.com/krancour/dqueue/items.schema.json",

	"title": "Items",
	"type": "object",
	"required": ["items"],
	"additionalProperties": false,
	"properties": {
		"items": {
			"type": "array",
			"description": "Work items to push onto the queue, in order",
			"minItems": 1,
			"maxItems": 1000,
			"items": {
				"type": "integer",
				"not": { "const": -1 },
				"description": "A work item; -1 is reserved as the end-of-stream sentinel"
			}
		}
	}
}
`)
