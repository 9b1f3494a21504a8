package repository

import (
	"context"
	"strconv"

	"github.com/eaglebank/account-rest-service/internal/models"
	"github.com/rs/zerolog"
)

const accountViewKeyPrefix = "account:view:"

// ViewCache is the subset of redis.ViewCache used for account views.
type ViewCache interface {
	Get(ctx context.Context, key string) (*models.AccountView, bool)
	Add(ctx context.Context, key string, value *models.AccountView)
	Invalidate(ctx context.Context, key string) error
}

// AccountReadRepository serves reads. When a cache is configured, single
// account lookups try Redis first and fall back to PostgreSQL, warming the
// cache on every cold read. Listing always goes to PostgreSQL.
//
// Warming only fills an empty key. Writes invalidate with a tombstone, so a
// read that loaded a row before an update or delete committed cannot cache
// the old row afterwards.
type AccountReadRepository struct {
	store *AccountRepository
	cache ViewCache
	log   zerolog.Logger
}

// NewAccountReadRepository accepts a nil cache, in which case every read
// goes to PostgreSQL.
func NewAccountReadRepository(store *AccountRepository, cache ViewCache, log zerolog.Logger) *AccountReadRepository {
	return &AccountReadRepository{store: store, cache: cache, log: log}
}

func accountViewKey(id int64) string {
	return accountViewKeyPrefix + strconv.FormatInt(id, 10)
}

// GetByID returns (nil, nil) when the account does not exist.
func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if r.cache != nil {
		if view, ok := r.cache.Get(ctx, accountViewKey(id)); ok {
			account, err := view.Account()
			if err == nil {
				return account, nil
			}
			r.log.Warn().Err(err).Int64("account_id", id).Msg("discarding corrupt account view")
			if err := r.cache.Invalidate(ctx, accountViewKey(id)); err != nil {
				r.log.Warn().Err(err).Int64("account_id", id).Msg("corrupt account view not cleared")
			}
		}
	}

	account, err := r.store.FindByID(ctx, id)
	if err != nil || account == nil {
		return nil, err
	}

	r.CacheAccount(ctx, account)
	return account, nil
}

func (r *AccountReadRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	return r.store.ListAll(ctx)
}

// CacheAccount caches the view of an account unless its key is already
// taken or was recently invalidated.
func (r *AccountReadRepository) CacheAccount(ctx context.Context, account *models.Account) {
	if r.cache == nil {
		return
	}
	view := account.Serialize()
	r.cache.Add(ctx, accountViewKey(account.ID), &view)
}

// InvalidateAccount drops the cached view so the next reads go to
// PostgreSQL.
func (r *AccountReadRepository) InvalidateAccount(ctx context.Context, id int64) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, accountViewKey(id))
}
