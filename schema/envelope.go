package schema

// OutputKey is the field every model answer is wrapped in.
const OutputKey = "output"

// Envelope returns the schema of a model answer: an object with a required
// "output" field matching output. A nil output accepts any non-null value.
func Envelope(output map[string]any) map[string]any {
	if output == nil {
		output = map[string]any{"not": map[string]any{"type": "null"}}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			OutputKey: output,
		},
		"required": []string{OutputKey},
	}
}

// OutputEnvelope validates the shape shared by all model answers.
var OutputEnvelope = MustCompile(Envelope(nil))
