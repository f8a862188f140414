// Package session runs calculator sessions on behalf of users. A session is a
// calculator state machine kept in storage between requests; inputs for the
// same session are applied one batch at a time.
package session

import (
	"context"

	"calculator/pkg/calculator"
	"calculator/pkg/domain"
)

//go:generate mockgen -package mocksession -source=interface.go -destination=mock/mocksession.go *
type Manager interface {
	Create(ctx context.Context, owner domain.UserID) (*domain.Session, error)
	Get(ctx context.Context, owner domain.UserID, ID domain.SessionID) (*domain.Session, error)
	Press(ctx context.Context,
		owner domain.UserID,
		ID domain.SessionID,
		inputs []calculator.Input) (*domain.Session, error)
	Delete(ctx context.Context, owner domain.UserID, ID domain.SessionID) error
}
