package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/feedhub/internal/client/storage"
)

// sessions returns the sessions bucket of tx
func sessions(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(bucketSessions)
	if bucket == nil {
		return nil, fmt.Errorf("sessions bucket not found")
	}
	return bucket, nil
}

// SaveAuth stores the session under its server URL
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if auth.ServerURL == "" {
		return storage.ErrNoServerURL
	}

	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := sessions(tx)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(auth.ServerURL), data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// GetAuth returns the session of serverURL
func (s *Storage) GetAuth(ctx context.Context, serverURL string) (*storage.AuthData, error) {
	var auth storage.AuthData

	err := s.view(func(tx *bbolt.Tx) error {
		bucket, err := sessions(tx)
		if err != nil {
			return err
		}

		data := bucket.Get([]byte(serverURL))
		if data == nil {
			return storage.ErrAuthNotFound
		}

		// data валидна только внутри транзакции, Unmarshal копирует ее
		return decodeSession(data, &auth)
	})
	if err != nil {
		return nil, err
	}

	return &auth, nil
}

// DeleteAuth removes the session of serverURL
func (s *Storage) DeleteAuth(ctx context.Context, serverURL string) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := sessions(tx)
		if err != nil {
			return err
		}

		key := []byte(serverURL)
		if bucket.Get(key) == nil {
			return storage.ErrAuthNotFound
		}
		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

// ListAuth returns all sessions; bbolt keeps keys sorted, so the result is ordered by server URL
func (s *Storage) ListAuth(ctx context.Context) ([]*storage.AuthData, error) {
	var list []*storage.AuthData

	err := s.view(func(tx *bbolt.Tx) error {
		bucket, err := sessions(tx)
		if err != nil {
			return err
		}

		return bucket.ForEach(func(_, data []byte) error {
			auth := &storage.AuthData{}
			if err := decodeSession(data, auth); err != nil {
				return err
			}
			list = append(list, auth)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

func decodeSession(data []byte, auth *storage.AuthData) error {
	if err := json.Unmarshal(data, auth); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return nil
}
