package cqrs

import "github.com/eaglebank/account-rest-service/internal/models"

type CreateAccountCommand struct {
	Payload models.AccountRequest
}

// UpdateAccountCommand applies Payload onto Account, which the caller has
// already loaded.
type UpdateAccountCommand struct {
	Account *models.Account
	Payload models.AccountRequest
}

type DeleteAccountCommand struct {
	AccountID int64
}
