// Package hexa converts bytes to uppercase hexadecimal text and back.
//
// Each byte is represented by 2 characters, high nibble first, using the digits 0-9A-F.
// The decoder also accepts lowercase digits.
package hexa

const digits = "0123456789ABCDEF"

const invalidNibble = 0xFF

// nibbles maps an ASCII character to its hexadecimal value or invalidNibble.
var nibbles = func() [256]byte {
	var tbl [256]byte
	for i := range tbl {
		tbl[i] = invalidNibble
	}
	for i := 0; i < len(digits); i++ {
		tbl[digits[i]] = byte(i)
	}
	for c := byte('a'); c <= 'f'; c++ {
		tbl[c] = c - 'a' + 10
	}
	return tbl
}()

// ToHex returns the uppercase hexadecimal text representing src.
func ToHex(src []byte) string {
	return string(AppendHex(nil, src))
}

// AppendHex appends the uppercase hexadecimal text of src to dst and returns the extended buffer.
func AppendHex(dst []byte, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, digits[b>>4], digits[b&0x0F])
	}
	return dst
}

// FromHex returns the bytes represented by the hexadecimal text s.
// It errors with ErrInvalidFormat if s has odd length or contains a non hexadecimal character.
func FromHex(s string) ([]byte, error) {
	if 0 != len(s)%2 {
		return nil, newError(ErrInvalidFormat, "odd length %d", len(s))
	}

	rv := make([]byte, len(s)/2)
	for i := range rv {
		hi := nibbles[s[2*i]]
		lo := nibbles[s[2*i+1]]
		if invalidNibble == hi || invalidNibble == lo {
			return nil, newError(ErrInvalidFormat, "invalid character at position %d", 2*i)
		}
		rv[i] = hi<<4 | lo
	}

	return rv, nil
}

// Bytes is a []byte that marshals to uppercase hexadecimal text.
type Bytes []byte

// MarshalText implements encoding.TextMarshaler.
func (self Bytes) MarshalText() ([]byte, error) {
	return AppendHex(nil, self), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (self *Bytes) UnmarshalText(text []byte) error {
	b, err := FromHex(string(text))
	if nil != err {
		return err
	}
	*self = Bytes(b)
	return nil
}
