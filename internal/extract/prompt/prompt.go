package prompt

import "fmt"

// SummarySystem directs the model to digest a document for diagram generation.
// Mirrors the sectioned structure the original architecture summaries used.
func SummarySystem() string {
	return `You are an expert system architect. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Analyze the document and summarize everything needed to draw an accurate architecture diagram:
1. System overview: main purpose and high-level architecture.
2. Core components: services, applications, databases, APIs, infrastructure.
3. Data flow: inputs, processing steps, outputs.
4. Technology stack and cloud services used.
5. Integration points: external systems and third-party services.
6. Storage, databases and data management.
7. Monitoring, security and access mechanisms.

Schema:
{
  "summary": "<string, the full structured summary>"
}`
}

// InventorySystem directs the model to emit the component inventory schema.
func InventorySystem() string {
	return `You are an expert system architect. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Requirements:
- categories is an ordered array; each category holds an ordered array of components.
- type must be one of: compute, storage, network, security, monitoring, integration, database.
- relationships lists names of other components this one talks to; use [] when unknown.
- Keep descriptions to one sentence.

Schema (example with empty values):
{
  "categories": [
    {
      "name": "<string>",
      "components": [
        {
          "name": "<string>",
          "type": "<compute|storage|network|security|monitoring|integration|database>",
          "description": "<string>",
          "relationships": ["<string>"]
        }
      ]
    }
  ]
}`
}

// DiagramSystem directs the model to emit a Mermaid flowchart.
func DiagramSystem() string {
	return `You are an expert system architect. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Requirements:
- syntax is a complete Mermaid flowchart ("flowchart LR" preferred).
- Every connection between components uses a directional arrow (-->), optionally labeled with the protocol.
- Group related components with subgraph blocks.
- Node identifiers must be plain alphanumeric; put display names in brackets.

Schema:
{
  "format": "mermaid",
  "syntax": "<string, the full Mermaid source>"
}`
}

// User wraps the source text as the user message for any of the schemas.
func User(sourceText string) string {
	return fmt.Sprintf("Document content:\n%s\n\nRespond with the JSON per schema.", sourceText)
}

// DefaultRenderInstructions is the proposed instruction set handed back with a
// fresh summary. The caller may edit it arbitrarily before approving the render.
func DefaultRenderInstructions() string {
	return `Create a professional, production-ready architecture diagram from the summary.
- Include every component, data store, integration and security layer the summary mentions.
- Landscape 16:9 layout, data flowing left to right: clients on the left, edge and ingress next, application in the center, data stores on the right.
- Group resources in labeled rectangular containers with sharp corners.
- Connect components with directional arrows labeled with protocols where known.
- White background, official service icons where available, output a single PNG.`
}
