package transport

// Serializer is an interface that provides methods to Marshal/Unmarshal messages.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// A SafeSerializer wraps a Serializer ensuring that marshaled/unmarshaled messages are optionally
// validated and size limited.
type SafeSerializer struct {
	Serializer

	// MaxSize bounds the size of serialized messages, 0 means no limit.
	MaxSize int
}

// WrapInSafeSerializer returns a SafeSerializer wrapping s.
func WrapInSafeSerializer(s Serializer) SafeSerializer {
	if c, isSafeSerializer := s.(SafeSerializer); isSafeSerializer {
		return c
	}

	return SafeSerializer{Serializer: s}
}

// Marshal performs 3 operations to deliver a serialized v.
// 1. If v has a Check method, Marshal calls it and errors in case it returns a non nil error.
// 2. It marshals v using the wrapped Serializer and errors in case it fails.
// 3. If MaxSize is set, it errors in case the serialized v is larger.
func (self SafeSerializer) Marshal(v any) ([]byte, error) {

	// optionally validate v
	if c, validate := v.(Checker); validate {
		err := c.Check()
		if nil != err {
			return nil, wrapError(err, ValidationError, "invalid, Check failed")
		}
	}

	// performs actual serialization
	srzmsg, err := self.Serializer.Marshal(v)
	if nil != err {
		return nil, wrapError(err, SerializationError, "failed marshalling msg")
	}

	if self.MaxSize > 0 && len(srzmsg) > self.MaxSize {
		return nil, newError(SizeError, "msg size %d larger than %d", len(srzmsg), self.MaxSize)
	}

	return srzmsg, nil
}

// Unmarshal performs 3 operations to deliver v.
// 1. If MaxSize is set, it errors in case data is larger.
// 2. It unmarshals data in v using the wrapped Serializer and errors in case it fails.
// 3. If v has a Check method, it calls it and errors in case it returns a non nil error.
func (self SafeSerializer) Unmarshal(data []byte, v any) error {
	if self.MaxSize > 0 && len(data) > self.MaxSize {
		return newError(SizeError, "data size %d larger than %d", len(data), self.MaxSize)
	}

	// performs actual deserialization
	err := self.Serializer.Unmarshal(data, v)
	if nil != err {
		return wrapError(err, SerializationError, "failed unmarshaling message")
	}

	// optionally validate v
	if c, checkable := v.(Checker); checkable {
		err = c.Check()
		if nil != err {
			return wrapError(err, ValidationError, "invalid, Check failed")
		}
	}

	return nil
}

var _ Serializer = SafeSerializer{}

// Checker is an interface that provides a method Check to validate messages.
type Checker interface {
	Check() error
}
