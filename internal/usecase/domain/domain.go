// Package domain contains application Usecases orchestrating domain logic.
package domain

import (
	"context"
	"time"

	"key-transactions-service/internal/quota"
	"key-transactions-service/internal/repository"

	"go.uber.org/zap"
)

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx      context.Context
	log      *zap.SugaredLogger
	repo     repository.Repository
	timeout  time.Duration
	limits   quota.Limits
	pageSize int
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	timeout time.Duration,
	limits quota.Limits,
	pageSize int,
) *Usecase {
	return &Usecase{
		ctx:      ctx,
		log:      log,
		repo:     repo,
		timeout:  timeout,
		limits:   limits,
		pageSize: pageSize,
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
