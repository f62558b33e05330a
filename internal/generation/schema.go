package generation

// ItinerarySchema is the JSON Schema of a generated itinerary. It is embedded
// verbatim in prompts.
const ItinerarySchema = `{
  "type": "object",
  "required": ["title", "days"],
  "properties": {
    "title": {"type": "string", "minLength": 1, "maxLength": 120},
    "days": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["dayIndex", "date", "activities"],
        "properties": {
          "dayIndex": {"type": "integer", "minimum": 0},
          "date": {"type": "string", "description": "ISO date YYYY-MM-DD"},
          "activities": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["time", "location", "content", "orderIndex"],
              "properties": {
                "time": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
                "location": {"type": "string", "minLength": 1, "maxLength": 200},
                "content": {"type": "string", "minLength": 1, "maxLength": 500},
                "url": {"type": "string", "format": "uri"},
                "weather": {"type": "string", "minLength": 3, "maxLength": 20},
                "orderIndex": {"type": "integer", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`

// envelopeSchema checks the top level only. Days are validated one by one so
// that a malformed day does not reject its siblings.
const envelopeSchema = `{
  "type": "object",
  "required": ["title", "days"],
  "properties": {
    "title": {"type": "string", "minLength": 1, "maxLength": 120},
    "days": {"type": "array", "minItems": 1}
  }
}`
