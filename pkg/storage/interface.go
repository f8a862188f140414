// Package storage defines the storage interfaces the calculator service relies
// on. It abstracts how sessions are kept so that different backends can provide
// concrete implementations; package memory keeps them in process.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"

	"calculator/pkg/domain"
)

// SessionStorage defines the operations on calculator sessions. Lookups return
// nil without an error when the session does not exist or has expired.
type SessionStorage interface {
	// StoreSession inserts a new session and returns the stored copy. It returns
	// ErrFull when the backend has reached its capacity.
	StoreSession(ctx context.Context, session domain.Session) (*domain.Session, error)
	// SessionByID returns a copy of the session with the given ID.
	SessionByID(ctx context.Context, ID domain.SessionID) (*domain.Session, error)
	// UpdateSession invokes cb with the stored session and saves the session as cb
	// left it. Calls for the same session never run concurrently, which makes cb
	// the place to run a read-modify-write cycle. When cb returns an error nothing
	// is saved and the error is returned as is.
	UpdateSession(ctx context.Context, ID domain.SessionID, cb func(session *domain.Session) error) (*domain.Session, error)
	// DeleteSession removes the session and returns it, or nil if it was not found.
	DeleteSession(ctx context.Context, ID domain.SessionID) (*domain.Session, error)
	// SessionCount returns the number of live sessions.
	SessionCount(ctx context.Context) int
}

// Storage is a SessionStorage with a lifecycle.
type Storage interface {
	SessionStorage

	// Close releases any resources held by the storage implementation (e.g. the
	// background expiry loop). After Close, the instance should not be used.
	Close() error
}
