package openai

import (
	"fmt"
	"strings"
)

const predictionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "predictions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "label": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["label", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["predictions"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Identify the main subjects of the attached image and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return at most %d predictions, most confident first.
- Labels are lowercase common nouns in singular form, 1-3 words each.
- A label may list synonyms separated by a comma and a space, e.g. "tabby, tabby cat".
- Confidence is a number from 0 (pure guess) to 1 (certain).
- Describe only what is visible. Do not read or transcribe text in the image.
- If nothing can be identified, return "predictions": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
{
  "predictions": [
    {"label":"tabby, tabby cat","confidence":0.82},
    {"label":"sofa, couch","confidence":0.41}
  ]
}
`

// buildSystemPrompt renders the instructions sent ahead of every image.
func buildSystemPrompt(topK int) string {
	return strings.TrimSpace(fmt.Sprintf(classificationPromptTemplate, predictionResponseSchema, topK))
}
