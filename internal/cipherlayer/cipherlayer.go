// Package cipherlayer wraps a payload in a ChaCha20-Poly1305 envelope padded
// to an exact size:
//
//	[Key: 32 bytes, only without a password] [Nonce: 12 bytes] [Ciphertext] [Tag: 16 bytes]
//
// With a password the key is SHA-256 of the password bytes. Without one a
// random key is generated and stored in front of the envelope, so the hidden
// data is still recoverable, only not secret.
//
// A nil password means "no password". A non-nil empty slice is the empty
// password.
package cipherlayer

import (
	"errors"
	"fmt"
	"io"

	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize
	TagSize   = chacha20poly1305.Overhead
)

// associatedData is authenticated alongside every envelope. Changing it
// invalidates every image produced before the change.
var associatedData = []byte("estegano")

var (
	// ErrPayloadTooLarge is returned by Seal when the plaintext and the
	// envelope overhead do not fit in the target size.
	ErrPayloadTooLarge = errors.New("payload too large for the channel")
	// ErrAuthenticationFailed is the only error Open reports about the
	// envelope contents: wrong password, corrupted data and "nothing hidden
	// here" are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Overhead returns the number of envelope bytes that are not plaintext.
func Overhead(password []byte) int {
	if password == nil {
		return KeySize + NonceSize + TagSize
	}
	return NonceSize + TagSize
}

// Seal encrypts plaintext into an envelope of exactly targetSize bytes,
// filling the gap with random padding before encryption. All randomness
// (key, nonce, padding) is read from rng.
func Seal(plaintext []byte, targetSize int, password []byte, rng io.Reader) ([]byte, error) {
	padding := targetSize - len(plaintext) - Overhead(password)
	if padding < 0 {
		return nil, fmt.Errorf("%w: %d bytes of plaintext, %d bytes of channel", ErrPayloadTooLarge, len(plaintext), targetSize)
	}

	key, err := envelopeKey(password, rng)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("creating ChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 0, targetSize)
	if password == nil {
		output = append(output, key...)
	}
	output = append(output, nonce[:]...)

	padded := make([]byte, len(plaintext)+padding)
	copy(padded, plaintext)
	if _, err := io.ReadFull(rng, padded[len(plaintext):]); err != nil {
		return nil, fmt.Errorf("generating random padding: %w", err)
	}
	defer zero(padded)

	// Seal appends the ciphertext and tag after the nonce.
	return aead.Seal(output, nonce[:], padded, associatedData), nil
}

// Open authenticates and decrypts an envelope produced by Seal. The result
// still carries the random padding; the caller strips it using the size
// prefix it sealed.
func Open(envelope []byte, password []byte) ([]byte, error) {
	if len(envelope) < Overhead(password) {
		return nil, ErrAuthenticationFailed
	}

	var key []byte
	nonceStart := 0
	if password == nil {
		key = append([]byte(nil), envelope[:KeySize]...)
		nonceStart = KeySize
	} else {
		digest := sha256.Sum256(password)
		key = digest[:]
	}
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("creating ChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := envelope[nonceStart : nonceStart+NonceSize]
	sealed := envelope[nonceStart+NonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, associatedData)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func envelopeKey(password []byte, rng io.Reader) ([]byte, error) {
	if password != nil {
		digest := sha256.Sum256(password)
		return digest[:], nil
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rng, key); err != nil {
		return nil, fmt.Errorf("generating random key: %w", err)
	}
	return key, nil
}

func zero(b []byte) {
	clear(b)
}
