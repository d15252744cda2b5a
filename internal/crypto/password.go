package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost - bcrypt cost factor для паролей пользователей
const PasswordCost = 12

// ErrPasswordMismatch возвращается, если пароль не совпадает с хешем
var ErrPasswordMismatch = errors.New("password does not match")

// Hasher hashes and verifies account passwords with bcrypt.
// The zero value uses PasswordCost.
type Hasher struct {
	Cost int
}

// NewHasher creates a Hasher with the given cost.
// Tests pass bcrypt.MinCost to keep runs fast.
func NewHasher(cost int) *Hasher {
	return &Hasher{Cost: cost}
}

// Hash хеширует пароль с использованием bcrypt
// Cleartext пароль нигде не сохраняется
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	cost := h.Cost
	if cost == 0 {
		cost = PasswordCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify проверяет, соответствует ли пароль сохраненному хешу
func (h *Hasher) Verify(password, hash string) error {
	if hash == "" {
		return fmt.Errorf("hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}

	return nil
}
