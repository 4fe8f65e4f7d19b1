package transport

import (
	"encoding/xml"
	"strings"
)

// XMLHeader is the declaration prepended by XMLSerializer.Marshal.
const XMLHeader = `<?xml version="1.0"?>`

// XMLSerializer provides a Serializer that uses xml Marshal/Unmarshal.
// Marshal output starts with XMLHeader.
type XMLSerializer struct{}

// Marshal wraps xml.Marshal
func (self XMLSerializer) Marshal(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if nil != err {
		return nil, err
	}
	return append([]byte(XMLHeader), body...), nil
}

// Unmarshal wraps xml.Unmarshal
func (self XMLSerializer) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

var _ Serializer = XMLSerializer{}

// XMLText captures the name and the text content of an XML root element.
// When unmarshaling, Text is the concatenated text of the element and of all its descendants.
type XMLText struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// UnmarshalXML implements xml.Unmarshaler.
func (self *XMLText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if nil != err {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if 0 == depth {
				self.XMLName = start.Name
				self.Text = sb.String()
				return nil
			}
			depth--
		}
	}
}

var _ xml.Unmarshaler = (*XMLText)(nil)
