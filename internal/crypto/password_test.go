package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		errMsg   string
		password string
		wantErr  bool
	}{
		{
			name:     "successful hash",
			password: "abcde",
			wantErr:  false,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
			errMsg:   "password cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Empty(t, hash)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, hash)
				assert.NotContains(t, hash, tt.password)

				cost, err := bcrypt.Cost([]byte(hash))
				require.NoError(t, err)
				assert.Equal(t, bcrypt.MinCost, cost)
			}
		})
	}
}

func TestHasher_DefaultCost(t *testing.T) {
	if testing.Short() {
		t.Skip("bcrypt cost 12 is slow")
	}

	var h Hasher
	hash, err := h.Hash("abcde")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestHasher_Hash_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash1, err := h.Hash("same-password")
	require.NoError(t, err)
	hash2, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "bcrypt hashes must be salted")
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	validHash, err := h.Hash("my_secret")
	require.NoError(t, err)

	tests := []struct {
		wantErr  error
		name     string
		password string
		hash     string
		errMsg   string
	}{
		{
			name:     "correct password",
			password: "my_secret",
			hash:     validHash,
		},
		{
			name:     "wrong password",
			password: "not_my_secret",
			hash:     validHash,
			wantErr:  ErrPasswordMismatch,
		},
		{
			name:     "empty hash",
			password: "my_secret",
			hash:     "",
			errMsg:   "hashed password cannot be empty",
		},
		{
			name:     "garbage hash",
			password: "my_secret",
			hash:     "not-a-bcrypt-hash",
			errMsg:   "failed to compare password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(tt.password, tt.hash)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}
