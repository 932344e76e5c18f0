package services

import (
	"fmt"
	"strings"

	"github.com/canonry/fact-engine/pkg/fields"
)

const extractionSystemMessage = "You are an expert at extracting structured data from documents."

// extractedFieldsResponse is the JSON shape the extraction prompt asks the
// model to return.
type extractedFieldsResponse struct {
	Fields []extractedFieldJSON `json:"fields"`
}

type extractedFieldJSON struct {
	FieldName  string  `json:"field_name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	FieldType  string  `json:"field_type,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// buildExtractionPrompt renders the field-extraction prompt for one
// document's text.
func buildExtractionPrompt(documentText string) string {
	var fieldLines strings.Builder
	for _, def := range fields.Definitions() {
		fieldLines.WriteString(fmt.Sprintf("- %s: %s (type: %s)\n", def.Name, def.Description, def.Type))
	}

	return fmt.Sprintf(`Your task is to extract company information from the following document text and return it as structured JSON.

Fields to extract:
%s
Instructions:
1. Read through the document text carefully
2. Extract values for each field that appears in the document
3. For each extracted field, provide:
   - field_name: The name of the field
   - value: The extracted value (normalized/cleaned)
   - confidence: Your confidence score (0.0 to 1.0) based on how clear and unambiguous the value is
   - field_type: The type of field (text, number, date, address)
   - notes: Optional notes about the extraction (e.g., "Found in header")
4. Only extract fields that are clearly present in the document
5. If a field is not found, do not include it in the output
6. Normalize values (e.g., dates to YYYY-MM-DD format, phone numbers to consistent format)

Document text:
%s

Return your response as a JSON object with this structure:
{
  "fields": [
    {
      "field_name": "company_name",
      "value": "Acme Corporation",
      "confidence": 0.95,
      "field_type": "text",
      "notes": "Found in document header"
    }
  ]
}

Important: Return ONLY valid JSON. Do not include any explanatory text before or after the JSON.`, fieldLines.String(), documentText)
}
