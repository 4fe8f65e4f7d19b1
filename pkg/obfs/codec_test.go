package obfs

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"code.extranets.org/golang/pkg/hexa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

// latin1Source generates sources of 1 to MaxSourceLen printable ISO-8859-1 characters.
type latin1Source string

func (latin1Source) Generate(r *rand.Rand, size int) reflect.Value {
	n := 1 + r.Intn(MaxSourceLen)
	var sb strings.Builder
	for range n {
		if 0 == r.Intn(2) {
			sb.WriteRune(rune('!' + r.Intn('~'-'!'+1)))
		} else {
			sb.WriteRune(rune(0xC0 + r.Intn(0x40)))
		}
	}
	return reflect.ValueOf(latin1Source(sb.String()))
}

func TestCodecRoundTrip(t *testing.T) {
	for _, padding := range []int{0, 1, 10, 40} {
		codec, err := New(WithPadding(padding))
		require.NoError(t, err)

		roundTrip := func(src latin1Source) bool {
			token, err := codec.Encode(string(src))
			if nil != err {
				return false
			}
			dec, err := codec.Decode(token)
			return nil == err && string(src) == dec
		}
		assert.NoError(t, quick.Check(roundTrip, nil), "padding %d", padding)
	}
}

func TestCodecTokenLen(t *testing.T) {
	for _, padding := range []int{0, 3, 10} {
		codec, err := New(WithPadding(padding))
		require.NoError(t, err)

		tokenLen := func(src latin1Source) bool {
			token, err := codec.Encode(string(src))
			srcLen := len([]rune(string(src)))
			return nil == err && len(token) == 2*(padding+4+srcLen) && len(token) == codec.TokenLen(srcLen)
		}
		assert.NoError(t, quick.Check(tokenLen, nil), "padding %d", padding)
	}
}

func TestCodecFrameLayout(t *testing.T) {
	codec, err := New(WithRandom(zeroReader{}))
	require.NoError(t, err)

	token, err := codec.Encode("alice")
	require.NoError(t, err)

	raw, err := hexa.FromHex(token)
	require.NoError(t, err)
	frame, err := Screen(latin1Bytes(DefaultKey), raw)
	require.NoError(t, err)
	assert.Equal(t, "03aliceAAAAAAAAAA05", string(frame))
}

func TestCodecDecodeHandBuiltFrame(t *testing.T) {
	frame := []byte("07QWERalice" + "XYZUVW" + "05")
	screened, err := Screen(latin1Bytes(DefaultKey), frame)
	require.NoError(t, err)

	dec, err := Decode(hexa.ToHex(screened))
	require.NoError(t, err)
	assert.Equal(t, "alice", dec)

	// hexadecimal decoding accepts lowercase
	dec, err = Decode(strings.ToLower(hexa.ToHex(screened)))
	require.NoError(t, err)
	assert.Equal(t, "alice", dec)
}

func TestCodecUsesLatin1(t *testing.T) {
	token, err := Encode("mot de passe éèà")
	require.NoError(t, err)
	assert.Len(t, token, Default().TokenLen(16))

	dec, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "mot de passe éèà", dec)

	dec, err = Decode(mustEncode(t, "ÿ¡¿ ©«»"))
	require.NoError(t, err)
	assert.Equal(t, "ÿ¡¿ ©«»", dec)
}

func mustEncode(t *testing.T, source string) string {
	token, err := Encode(source)
	require.NoError(t, err)
	return token
}

func TestCodecKey(t *testing.T) {
	other, err := New(WithKey("another key"))
	require.NoError(t, err)

	token, err := other.Encode("secret")
	require.NoError(t, err)
	dec, err := other.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "secret", dec)

	dec, err = Decode(token)
	if nil == err {
		assert.NotEqual(t, "secret", dec)
	} else {
		assert.ErrorIs(t, err, ErrFormat)
	}
}

func TestCodecEncodeFail(t *testing.T) {
	testcases := []struct {
		name   string
		source string
	}{
		{name: "empty", source: ""},
		{name: "blank", source: " \t "},
		{name: "too long", source: strings.Repeat("x", MaxSourceLen+1)},
		{name: "greek", source: "pi=π"},
		{name: "euro", source: "pa€ss"},
		{name: "cjk", source: "pa日ss"},
		{name: "emoji", source: "🙂"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.source)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.ErrorIs(t, err, Error)
		})
	}

	_, err := Encode(strings.Repeat("x", MaxSourceLen))
	assert.NoError(t, err)

	codec, err := New(WithRandom(failingReader{}))
	require.NoError(t, err)
	_, err = codec.Encode("alice")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCodecDecodeFail(t *testing.T) {
	key := latin1Bytes(DefaultKey)
	screen := func(frame string) string {
		b, err := Screen(key, []byte(frame))
		require.NoError(t, err)
		return hexa.ToHex(b)
	}

	testcases := []struct {
		name  string
		token string
	}{
		{name: "not hexadecimal", token: "ZZ00"},
		{name: "odd length", token: "ABC"},
		{name: "empty", token: ""},
		{name: "too short", token: screen("03a")},
		{name: "bad start digits", token: screen("x3alice05")},
		{name: "bad length digits", token: screen("03alice0y")},
		{name: "start inside digits", token: screen("01alice05")},
		{name: "length overflow", token: screen("03alice09")},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.token)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}

	_, err := Decode("ZZ")
	assert.ErrorIs(t, err, hexa.ErrInvalidFormat)
}

func TestOptionsFail(t *testing.T) {
	testcases := []struct {
		name string
		opt  Option
	}{
		{name: "negative padding", opt: WithPadding(-1)},
		{name: "large padding", opt: WithPadding(97)},
		{name: "empty key", opt: WithKey("")},
		{name: "non latin1 key", opt: WithKey("κλειδί")},
		{name: "nil random", opt: WithRandom(nil)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.opt)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
