package cipherlayer

import (
	"bytes"
	"crypto/rand"
	mathrand "math/rand"
	"testing"

	sha256 "github.com/minio/sha256-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

// seededReader returns a deterministic byte source for tests that need
// reproducible envelopes.
func seededReader(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("size-prefixed archive bytes")
	for _, tt := range []struct {
		name     string
		password []byte
	}{
		{"password", []byte("test")},
		{"empty password", []byte{}},
		{"random key", nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			targetSize := len(plaintext) + Overhead(tt.password) + 17
			envelope, err := Seal(plaintext, targetSize, tt.password, rand.Reader)
			require.NoError(t, err)
			require.Len(t, envelope, targetSize)

			opened, err := Open(envelope, tt.password)
			require.NoError(t, err)
			require.Len(t, opened, len(plaintext)+17)
			assert.True(t, bytes.HasPrefix(opened, plaintext), "opened envelope does not start with the plaintext")
		})
	}
}

func TestSealExactFit(t *testing.T) {
	plaintext := []byte("exact")
	envelope, err := Seal(plaintext, len(plaintext)+Overhead(nil), nil, rand.Reader)
	require.NoError(t, err)

	opened, err := Open(envelope, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSealPayloadTooLarge(t *testing.T) {
	plaintext := make([]byte, 10)
	_, err := Seal(plaintext, len(plaintext)+Overhead([]byte("pw"))-1, []byte("pw"), rand.Reader)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	// The random key costs 32 bytes more than a password.
	_, err = Seal(plaintext, len(plaintext)+Overhead([]byte("pw")), nil, rand.Reader)
	assert.ErrorIs(t, err, ErrPayloadTooLarge, "without password")
}

func TestEnvelopeLayoutWithPassword(t *testing.T) {
	password := []byte("test")
	plaintext := []byte("layout")
	envelope, err := Seal(plaintext, 64, password, seededReader(1))
	require.NoError(t, err)

	// Decrypt by hand with the documented layout and key derivation.
	key := sha256.Sum256(password)
	aead, err := chacha20poly1305.New(key[:])
	require.NoError(t, err)
	opened, err := aead.Open(nil, envelope[:NonceSize], envelope[NonceSize:], []byte("estegano"))
	require.NoError(t, err, "manual open")
	assert.True(t, bytes.HasPrefix(opened, plaintext), "manual open did not recover the plaintext")
}

func TestEnvelopeLayoutWithoutPassword(t *testing.T) {
	plaintext := []byte("layout")
	envelope, err := Seal(plaintext, 96, nil, seededReader(2))
	require.NoError(t, err)

	aead, err := chacha20poly1305.New(envelope[:KeySize])
	require.NoError(t, err)
	nonce := envelope[KeySize : KeySize+NonceSize]
	_, err = aead.Open(nil, nonce, envelope[KeySize+NonceSize:], []byte("estegano"))
	assert.NoError(t, err, "manual open with the embedded key")
}

func TestSealDeterministicWithSeededReader(t *testing.T) {
	plaintext := []byte("same input")
	first, err := Seal(plaintext, 80, []byte("pw"), seededReader(7))
	require.NoError(t, err)
	second, err := Seal(plaintext, 80, []byte("pw"), seededReader(7))
	require.NoError(t, err)
	assert.Equal(t, first, second, "same randomness should produce identical envelopes")
}

func TestOpenWrongPassword(t *testing.T) {
	envelope, err := Seal([]byte("secret"), 64, []byte("right"), rand.Reader)
	require.NoError(t, err)

	_, err = Open(envelope, []byte("wrong"))
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "wrong password")
	_, err = Open(envelope, nil)
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "missing password")
}

func TestOpenTampered(t *testing.T) {
	plaintext := []byte("secret")
	envelope, err := Seal(plaintext, 128, nil, rand.Reader)
	require.NoError(t, err)
	_, err = Open(envelope, nil)
	require.NoError(t, err, "untampered envelope")

	regions := map[string]int{
		"key":        0,
		"nonce":      KeySize,
		"ciphertext": KeySize + NonceSize,
		"tag":        len(envelope) - 1,
	}
	for name, index := range regions {
		tampered := append([]byte(nil), envelope...)
		tampered[index] ^= 0x01
		_, err := Open(tampered, nil)
		assert.ErrorIs(t, err, ErrAuthenticationFailed, "flipped %s byte %d", name, index)
	}
}

func TestOpenShortEnvelope(t *testing.T) {
	for _, size := range []int{0, 1, NonceSize + TagSize - 1} {
		_, err := Open(make([]byte, size), []byte("pw"))
		assert.ErrorIs(t, err, ErrAuthenticationFailed, "Open(%d bytes)", size)
	}
	_, err := Open(make([]byte, Overhead(nil)-1), nil)
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "Open(short, nil)")
}

func TestOpenRandomBytes(t *testing.T) {
	garbage := make([]byte, 200)
	_, err := seededReader(3).Read(garbage)
	require.NoError(t, err)

	_, err = Open(garbage, nil)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
