package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// AESPinCipher implements ports.PinCipher using AES-256-CBC with PKCS7
// padding, the scheme HesabPay requires for the money-transfer PIN.
// The key string is derived per the provider contract: truncated or
// zero-padded to exactly 32 bytes.
type AESPinCipher struct{}

// NewAESPinCipher creates a new PIN cipher.
func NewAESPinCipher() *AESPinCipher {
	return &AESPinCipher{}
}

// Encrypt encrypts pin with a fresh random 16-byte IV per call and returns
// base64(iv || ciphertext). Output differs on every call for the same input.
func (c *AESPinCipher) Encrypt(pin string, key string) (string, error) {
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	plaintext := pkcs7Pad([]byte(pin), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt reverses Encrypt. Used to round-trip-verify ciphertexts; the
// provider holds the same derived key on its side.
func (c *AESPinCipher) Decrypt(ciphertextB64 string, key string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(raw) < aes.BlockSize || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a positive multiple of the block size", len(raw))
	}

	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext) == 0 {
		return "", fmt.Errorf("ciphertext is empty")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// deriveKey truncates or zero-pads the key string to exactly 32 bytes.
func deriveKey(key string) []byte {
	derived := make([]byte, 32)
	copy(derived, key)
	return derived
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}
