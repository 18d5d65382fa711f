package usecase

import (
	"context"

	"scan-stats-service/internal/scans/core/ports"

	"github.com/golang-sql/civil"
)

type GetActivityUseCase struct {
	repo ports.ScanRepositoryPort
}

func NewGetActivityUseCase(repo ports.ScanRepositoryPort) *GetActivityUseCase {
	return &GetActivityUseCase{repo: repo}
}

func (uc *GetActivityUseCase) Execute(ctx context.Context, userID int64) (civil.Date, bool, error) {
	if userID <= 0 {
		return civil.Date{}, false, ErrInvalidUser
	}
	return uc.repo.LastActivity(ctx, userID)
}
