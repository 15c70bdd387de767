package extract

import (
	"encoding/json"
	"strings"

	"github.com/archgram/archgram/internal/domain/schema"
)

// FirstJSONSpan locates the first well-formed JSON object or array inside raw
// model output. Models wrap structured data in prose or code fences often
// enough that a plain unmarshal of the whole response is not workable.
func FirstJSONSpan(raw string) (json.RawMessage, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' && raw[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var span json.RawMessage
		if err := dec.Decode(&span); err == nil {
			return span, true
		}
	}
	return nil, false
}

// looseCategory and looseComponent defer unit decoding so one malformed
// entry can be dropped without invalidating the rest of the inventory.
type looseInventory struct {
	Categories []json.RawMessage `json:"categories"`
}

type looseCategory struct {
	Name       string            `json:"name"`
	Components []json.RawMessage `json:"components"`
}

type looseComponent struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	Relationships []string `json:"relationships"`
}

// decodeInventory parses a JSON span as a ComponentInventory. Malformed
// categories and components are dropped, missing optional fields get their
// documented defaults. Returns false when nothing usable was decoded.
func decodeInventory(span json.RawMessage) (schema.ComponentInventory, bool) {
	var loose looseInventory
	if err := json.Unmarshal(span, &loose); err != nil {
		// Some models emit the category list without the wrapper object.
		if err2 := json.Unmarshal(span, &loose.Categories); err2 != nil {
			return schema.ComponentInventory{}, false
		}
	}

	var inv schema.ComponentInventory
	for _, rawCat := range loose.Categories {
		var lc looseCategory
		if err := json.Unmarshal(rawCat, &lc); err != nil || lc.Name == "" {
			continue
		}
		cat := schema.Category{Name: lc.Name, Components: []schema.Component{}}
		for _, rawComp := range lc.Components {
			var c looseComponent
			if err := json.Unmarshal(rawComp, &c); err != nil || c.Name == "" {
				continue
			}
			rels := c.Relationships
			if rels == nil {
				rels = []string{}
			}
			cat.Components = append(cat.Components, schema.Component{
				Name:          c.Name,
				Type:          schema.NormalizeType(c.Type),
				Description:   c.Description,
				Relationships: rels,
			})
		}
		inv.Categories = append(inv.Categories, cat)
	}
	if len(inv.Categories) == 0 {
		return schema.ComponentInventory{}, false
	}
	return inv, true
}

// decodeSummary parses a JSON span as a Summary. A bare JSON string is
// accepted as the summary text itself.
func decodeSummary(span json.RawMessage) (schema.Summary, bool) {
	var s schema.Summary
	if err := json.Unmarshal(span, &s); err == nil && strings.TrimSpace(s.Summary) != "" {
		return schema.Summary{Summary: strings.TrimSpace(s.Summary)}, true
	}
	var text string
	if err := json.Unmarshal(span, &text); err == nil && strings.TrimSpace(text) != "" {
		return schema.Summary{Summary: strings.TrimSpace(text)}, true
	}
	return schema.Summary{}, false
}

// decodeDiagram parses a JSON span as a DiagramDescription.
func decodeDiagram(span json.RawMessage) (schema.DiagramDescription, bool) {
	var d schema.DiagramDescription
	if err := json.Unmarshal(span, &d); err != nil || strings.TrimSpace(d.Syntax) == "" {
		return schema.DiagramDescription{}, false
	}
	if d.Format == "" {
		d.Format = schema.FormatMermaid
	}
	return d, true
}
