package schema

import "strings"

// Summary is the architecture-focused digest of a source document.
type Summary struct {
	Summary string `json:"summary"`
}

// ComponentType enum
type ComponentType string

const (
	TypeCompute      ComponentType = "compute"
	TypeStorage      ComponentType = "storage"
	TypeNetwork      ComponentType = "network"
	TypeSecurity     ComponentType = "security"
	TypeMonitoring   ComponentType = "monitoring"
	TypeIntegration  ComponentType = "integration"
	TypeDatabase     ComponentType = "database"
	TypeUnrecognized ComponentType = "unrecognized"
)

// NormalizeType maps free-form model output onto the closed type set.
// Anything outside the set becomes unrecognized rather than an error.
func NormalizeType(s string) ComponentType {
	switch ComponentType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeCompute, TypeStorage, TypeNetwork, TypeSecurity,
		TypeMonitoring, TypeIntegration, TypeDatabase:
		return ComponentType(strings.ToLower(strings.TrimSpace(s)))
	default:
		return TypeUnrecognized
	}
}

// Component is one inventoried piece of the architecture. Relationships
// name other components; the names are informational only and are not
// checked against the inventory.
type Component struct {
	Name          string        `json:"name"`
	Type          ComponentType `json:"type"`
	Description   string        `json:"description,omitempty"`
	Relationships []string      `json:"relationships"`
}

// Category groups components, preserving the order the model produced.
type Category struct {
	Name       string      `json:"name"`
	Components []Component `json:"components"`
}

// ComponentInventory is the structured component view of a summary.
type ComponentInventory struct {
	Categories []Category `json:"categories"`
}

// DiagramDescription is a text-based rendition of the architecture,
// expressed as Mermaid flowchart syntax.
type DiagramDescription struct {
	Format string `json:"format"`
	Syntax string `json:"syntax"`
}

// FormatMermaid is the only format the service emits today.
const FormatMermaid = "mermaid"
