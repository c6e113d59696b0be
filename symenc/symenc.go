// Package symenc turns a shared group element into a symmetric payload
// cipher: a blake3 extendable-output keystream XORed against the
// message. Encryption and decryption are the same operation.
package symenc

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// DomainTag separates the payload keystream derivation from any other
// blake3 use of the same secret bytes.
const DomainTag = "tess/threshold/payload/v1"

// DeriveKeystream expands secret into n pseudorandom payload-keystream
// bytes under DomainTag.
func DeriveKeystream(secret []byte, n int) []byte {
	return Derive(DomainTag, secret, n)
}

// Derive expands secret into n pseudorandom bytes under an explicit
// domain tag; derivations under different tags are independent. The
// output is bound to the tag and to n itself, so truncations of a
// longer stream and streams of other lengths never collide. n = 0
// returns an empty slice without touching the hasher.
func Derive(tag string, secret []byte, n int) []byte {
	if n <= 0 {
		return nil
	}
	h := blake3.New()
	h.Write([]byte(tag))
	h.Write(secret)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(n))
	h.Write(lenBuf[:])
	out := make([]byte, n)
	h.Digest().Read(out)
	return out
}

// EncryptPayload XORs payload against the keystream derived from secret.
func EncryptPayload(secret, payload []byte) []byte {
	ks := DeriveKeystream(secret, len(payload))
	out := make([]byte, len(payload))
	for i := range payload {
		out[i] = payload[i] ^ ks[i]
	}
	return out
}

// DecryptPayload inverts EncryptPayload. XOR is its own inverse, so the
// two are the same function under different names.
func DecryptPayload(secret, sealed []byte) []byte {
	return EncryptPayload(secret, sealed)
}
