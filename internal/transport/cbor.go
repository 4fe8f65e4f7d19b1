package transport

import (
	"github.com/fxamacker/cbor/v2"
)

// cborEnc produces Core Deterministic Encoding, a given value always serializes to the same bytes.
var cborEnc = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if nil != err {
		panic(err)
	}
	return em
}()

// CBORSerializer provides a Serializer that uses deterministic cbor Marshal and default Unmarshal.
type CBORSerializer struct{}

// Marshal wraps cbor EncMode.Marshal
func (self CBORSerializer) Marshal(v any) ([]byte, error) {
	return cborEnc.Marshal(v)
}

// Unmarshal wraps cbor.Unmarshal
func (self CBORSerializer) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

var _ Serializer = CBORSerializer{}
