// Package assist implements the AI-assisted features: header mapping,
// natural-language search translation, rule synthesis, rule suggestion, and
// error-correction generation. Each feature is one prompt template and one
// target schema over the same mediator contract.
package assist

import "gridsmith/internal/structured"

// Registered schema names, usable through the HTTP boundary's schemaName
// selection as well as the typed helpers below.
const (
	SchemaColumnMapping   = "column_mapping"
	SchemaSearchFilter    = "search_filter"
	SchemaRuleSynthesis   = "rule_synthesis"
	SchemaRuleSuggestions = "rule_suggestions"
	SchemaCorrection      = "correction"
)

var columnMappingSchema = structured.Schema{
	Name: SchemaColumnMapping,
	Fields: map[string]structured.Field{
		// Uploaded header -> canonical column name; keys are data, so the
		// object is declared without fixed fields.
		"mapping": {Type: structured.TypeObject},
		"unmapped": {
			Type:     structured.TypeArray,
			Optional: true,
			Elem:     &structured.Field{Type: structured.TypeString},
		},
	},
}

var searchFilterSchema = structured.Schema{
	Name: SchemaSearchFilter,
	Fields: map[string]structured.Field{
		"entity":   {Type: structured.TypeString},
		"column":   {Type: structured.TypeString},
		"operator": {Type: structured.TypeString},
		"value":    {Type: structured.TypeString},
	},
}

var ruleSynthesisSchema = structured.Schema{
	Name: SchemaRuleSynthesis,
	Fields: map[string]structured.Field{
		"type":        {Type: structured.TypeString},
		"description": {Type: structured.TypeString},
		"tasks": {
			Type:     structured.TypeArray,
			Optional: true,
			Elem:     &structured.Field{Type: structured.TypeString},
		},
		"params": {Type: structured.TypeObject, Optional: true},
	},
}

var ruleSuggestionsSchema = structured.Schema{
	Name: SchemaRuleSuggestions,
	Fields: map[string]structured.Field{
		"rules": {
			Type: structured.TypeArray,
			Elem: &structured.Field{
				Type: structured.TypeObject,
				Fields: map[string]structured.Field{
					"type":        {Type: structured.TypeString},
					"description": {Type: structured.TypeString},
					"confidence":  {Type: structured.TypeNumber, Optional: true},
				},
			},
		},
	},
}

var correctionSchema = structured.Schema{
	Name: SchemaCorrection,
	Fields: map[string]structured.Field{
		"column":     {Type: structured.TypeString},
		"old_value":  {Type: structured.TypeString, Optional: true},
		"new_value":  {Type: structured.TypeString},
		"confidence": {Type: structured.TypeNumber},
		"auto_apply": {Type: structured.TypeBoolean},
	},
}

func init() {
	structured.Register(columnMappingSchema)
	structured.Register(searchFilterSchema)
	structured.Register(ruleSynthesisSchema)
	structured.Register(ruleSuggestionsSchema)
	structured.Register(correctionSchema)
}
