package transport

import (
	"encoding/json"
)

// JSONSerializer provides a Serializer that uses json Marshal/Unmarshal.
// If Indent is set, Marshal output is indented.
type JSONSerializer struct {
	Indent string
}

// Marshal wraps json.Marshal
func (self JSONSerializer) Marshal(v any) ([]byte, error) {
	if "" != self.Indent {
		return json.MarshalIndent(v, "", self.Indent)
	}
	return json.Marshal(v)
}

// Unmarshal wraps json.Unmarshal
func (self JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

var _ Serializer = JSONSerializer{}
