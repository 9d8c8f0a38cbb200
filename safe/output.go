package safe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Output is the value of the "output" field of a model answer.
type Output struct {
	raw json.RawMessage
}

// NewOutput wraps raw JSON text as an Output.
func NewOutput(raw string) Output {
	return Output{raw: json.RawMessage(raw)}
}

// Raw returns the JSON text of the value.
func (o Output) Raw() json.RawMessage {
	return o.raw
}

// IsString reports whether the value is a JSON string.
func (o Output) IsString() bool {
	return len(o.raw) > 0 && o.raw[0] == '"'
}

// IsNull reports whether the value is JSON null or absent.
func (o Output) IsNull() bool {
	return len(o.raw) == 0 || string(o.raw) == "null"
}

// String returns the unquoted text of a string value, or the JSON text of
// any other value. Models often answer `"output": 7` where "7" was asked
// for; String lets clean-up code treat both alike.
func (o Output) String() string {
	if o.IsString() {
		var s string
		if err := json.Unmarshal(o.raw, &s); err == nil {
			return s
		}
	}
	return string(o.raw)
}

// Decode unmarshals the value into v.
//
// A string value holding JSON text is decoded from that text when direct
// decoding fails, so `"output": "[\"a\", \"b\"]"` decodes into a []string.
func (o Output) Decode(v any) error {
	err := json.Unmarshal(o.raw, v)
	if err == nil || !o.IsString() {
		return err
	}
	inner := strings.TrimSpace(o.String())
	if innerErr := json.Unmarshal([]byte(inner), v); innerErr != nil {
		return err
	}
	return nil
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FormatExample renders an example output for the prompt envelope.
// Strings are JSON-quoted; any other value is JSON-encoded.
func FormatExample(example any) string {
	text, err := encodeJSON(example)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(example))
	}
	return text
}
