package usecase

import (
	"context"
	"time"

	"key-transactions-service/internal/quota"
	"key-transactions-service/internal/repository"
	"key-transactions-service/internal/usecase/domain"

	"go.uber.org/zap"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	KeyTransactionUsecaseInterface
	ProvisioningUsecaseInterface
}

// New constructs a new usecase layer with its dependencies.
func New(log *zap.SugaredLogger, ctx context.Context, repo repository.Repository, timeout time.Duration, limits quota.Limits, pageSize int) InterfaceUsecase {
	return domain.New(log, ctx, repo, timeout, limits, pageSize)
}
