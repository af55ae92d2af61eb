package mcp

import "github.com/shahlaukik/money-manager-mcp/internal/shared/types"

// InputSchema renders a tool's parameters as a JSON Schema object
func InputSchema(tool types.Tool) map[string]any {
	properties := make(map[string]any, len(tool.Parameters))
	required := []string{}

	for _, p := range tool.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == "array" {
			items := p.Items
			if items == "" {
				items = "string"
			}
			prop["items"] = map[string]any{"type": items}
			if p.Required {
				prop["minItems"] = 1
			}
		}
		if p.Pattern != "" {
			prop["pattern"] = p.Pattern
		}
		if p.Minimum != nil {
			prop["minimum"] = *p.Minimum
		}
		if p.Maximum != nil {
			prop["maximum"] = *p.Maximum
		}

		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
