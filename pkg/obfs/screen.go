package obfs

// xorScreen XORs bytes with a key used as a ring buffer.
type xorScreen struct {
	key []byte
	cur int
}

func newXorScreen(key []byte) (*xorScreen, error) {
	if len(key) == 0 {
		return nil, newError(ErrInvalidArgument, "cannot use empty key")
	}
	return &xorScreen{key: key}, nil
}

func (s *xorScreen) screen(b byte) byte {
	b ^= s.key[s.cur]
	s.cur = (s.cur + 1) % len(s.key)
	return b
}

// Screen returns a copy of data where byte i is XORed with key[i % len(key)].
// Screen is its own inverse. It errors if key is empty.
func Screen(key []byte, data []byte) ([]byte, error) {
	scr, err := newXorScreen(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = scr.screen(b)
	}
	return out, nil
}
