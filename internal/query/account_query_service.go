package query

import (
	"context"

	"github.com/eaglebank/account-rest-service/internal/cqrs"
	"github.com/eaglebank/account-rest-service/internal/models"
)

// AccountReader is the read side of the account repository.
type AccountReader interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
}

type AccountQueryService struct {
	readRepo AccountReader
}

func NewAccountQueryService(readRepo AccountReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount returns (nil, nil) when no account has the requested id.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.readRepo.GetByID(ctx, q.AccountID)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, _ cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.readRepo.ListAll(ctx)
}
