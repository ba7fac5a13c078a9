package models

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"
)

// User - учетная запись Google, от имени которой читается календарь.
// Refresh token хранится только в зашифрованном виде.
type User struct {
	gorm.Model
	GoogleID              string `json:"google_id" gorm:"uniqueIndex;not null"`
	Email                 string `json:"email" gorm:"uniqueIndex;not null"`
	Name                  string `json:"name"`
	EncryptedRefreshToken string `json:"-"`
}

// encryptionKey выводит 32-байтовый ключ AES-256 из ENCRYPTION_KEY через SHA-256,
// чтобы не требовать от оператора ключ ровно нужной длины.
func encryptionKey() ([]byte, error) {
	secret := os.Getenv("ENCRYPTION_KEY")
	if secret == "" {
		return nil, errors.New("ENCRYPTION_KEY is not set")
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

// SetRefreshToken шифрует токен (AES-256-GCM) и кладет его в
// EncryptedRefreshToken как hex(nonce || ciphertext).
func (u *User) SetRefreshToken(token string) error {
	key, err := encryptionKey()
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	u.EncryptedRefreshToken = hex.EncodeToString(sealed)
	return nil
}

// RefreshToken расшифровывает сохраненный refresh token.
func (u *User) RefreshToken() (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	raw, err := hex.DecodeString(u.EncryptedRefreshToken)
	if err != nil {
		return "", fmt.Errorf("decode stored token: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("stored token is too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return string(plain), nil
}
