package openai

import (
	"fmt"
	"strings"

	"github.com/engramdb/engram/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {
            "type": "string"
          },
          "value": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "context": {
            "type": "string"
          }
        },
        "required": ["type", "value", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the entities mentioned in the given personal note and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Type field must match exactly one of the listed values: %s.
- Value is the entity surface form in lowercase, e.g. "sarah" or "blue bottle".
- Confidence is a number from 0 (uncertain) to 1 (certain). Rate how sure you are that the value is an entity of that type.
- Context is the fragment of the note the entity occurs in.
- Include only entities that are explicitly mentioned or clearly implied by the note. Do not hallucinate.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (formal):
Input: "Had coffee with Sarah at Blue Bottle this morning."
Output:
{
  "entities": [
    {"type":"person","value":"sarah","confidence":0.95,"context":"coffee with Sarah"},
    {"type":"location","value":"blue bottle","confidence":0.9,"context":"at Blue Bottle"},
    {"type":"activity","value":"coffee","confidence":0.8,"context":"Had coffee"}
  ]
}

---  // informal / note-style examples

Example (missing capitalization, no punctuation):
Input: "lunch with marco at the office"
Output:
{
  "entities": [
    {"type":"person","value":"marco","confidence":0.95,"context":"lunch with marco"},
    {"type":"location","value":"office","confidence":0.85,"context":"at the office"},
    {"type":"activity","value":"lunch","confidence":0.8,"context":"lunch with marco"}
  ]
}

Example (emotion):
Input: "feeling anxious about the launch tomorrow"
Output:
{
  "entities": [
    {"type":"emotion","value":"anxious","confidence":0.9,"context":"feeling anxious"},
    {"type":"event","value":"launch","confidence":0.85,"context":"the launch tomorrow"},
    {"type":"date","value":"tomorrow","confidence":0.8,"context":"launch tomorrow"}
  ]
}

Example (organization):
Input: "interview went well, acme wants a second round"
Output:
{
  "entities": [
    {"type":"organization","value":"acme","confidence":0.9,"context":"acme wants a second round"},
    {"type":"event","value":"interview","confidence":0.85,"context":"interview went well"}
  ]
}`

// buildSystemPrompt creates the system prompt with entity types embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.EntityTypes, ", "))
}
