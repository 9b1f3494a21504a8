package command

import (
	"context"

	"github.com/eaglebank/account-rest-service/internal/cqrs"
	"github.com/eaglebank/account-rest-service/internal/events"
	"github.com/eaglebank/account-rest-service/internal/models"
	"github.com/rs/zerolog"
)

// AccountWriter is the write side of the account repository.
type AccountWriter interface {
	Insert(ctx context.Context, account *models.Account) error
	UpdateByID(ctx context.Context, account *models.Account) error
	DeleteByID(ctx context.Context, id int64) error
}

// ViewMaintainer keeps the read model in step with writes.
type ViewMaintainer interface {
	CacheAccount(ctx context.Context, account *models.Account)
	InvalidateAccount(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService writes account state and keeps the read model in
// sync. Each command issues exactly one write to the store.
type AccountCommandService struct {
	writeRepo AccountWriter
	views     ViewMaintainer
	publisher EventPublisher
	log       zerolog.Logger
}

func NewAccountCommandService(
	writeRepo AccountWriter,
	views ViewMaintainer,
	publisher EventPublisher,
	log zerolog.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		writeRepo: writeRepo,
		views:     views,
		publisher: publisher,
		log:       log,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	account := cmd.Payload.NewAccount()
	if err := s.writeRepo.Insert(ctx, account); err != nil {
		return nil, err
	}
	s.views.CacheAccount(ctx, account)
	s.publish(ctx, events.AccountCreated, changedEvent(account))
	return account, nil
}

func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	account := *cmd.Account
	cmd.Payload.Apply(&account)

	if err := s.writeRepo.UpdateByID(ctx, &account); err != nil {
		return nil, err
	}
	if err := s.views.InvalidateAccount(ctx, account.ID); err != nil {
		s.log.Error().Err(err).Int64("account_id", account.ID).Msg("cached account view may be stale")
	}
	s.publish(ctx, events.AccountUpdated, changedEvent(&account))
	return &account, nil
}

func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	if err := s.writeRepo.DeleteByID(ctx, cmd.AccountID); err != nil {
		return err
	}
	if err := s.views.InvalidateAccount(ctx, cmd.AccountID); err != nil {
		s.log.Error().Err(err).Int64("account_id", cmd.AccountID).Msg("cached account view may outlive the account")
	}
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{AccountID: cmd.AccountID})
	return nil
}

// publish never fails the command; the write has already happened.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("failed to publish account event")
	}
}

func changedEvent(a *models.Account) events.AccountChangedEvent {
	return events.AccountChangedEvent{
		AccountID:  a.ID,
		Name:       a.Name,
		Email:      a.Email,
		DateJoined: a.DateJoined.Format(models.DateLayout),
	}
}
