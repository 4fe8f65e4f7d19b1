/*
Package obfs provides a reversible printable obfuscation of short strings.

Note that this is NOT encryption, the transformation is easily reversed by anyone holding the key.
It is meant to keep credentials unreadable for casual observers (logs, proxies...) and is expected
to be paired with a signature that detects tampering, see package paramsig.

# How it works:

A source of 1 to 99 characters is embedded at a random offset inside a frame:

	[2 digits start][padding before][source][padding after][2 digits length]

Padding is made of random uppercase letters, the padding before and after the source add up to the
Codec padding count. The frame is converted to bytes using ISO-8859-1, a source with characters outside
ISO-8859-1 is rejected. The bytes are screened with a rolling XOR
over the key bytes and finally hex encoded.

For a given padding count, the length of a token only depends on the length of the source.

# Important note:

Encoder and decoder must use the same key. Decoding a token produced with another key returns
an ErrFormat error or garbled text, there is no integrity check.
*/
package obfs
