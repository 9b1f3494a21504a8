package cqrs

// GetAccountQuery fetches a single account by identifier.
type GetAccountQuery struct {
	AccountID int64
}

// ListAccountsQuery fetches every account.
type ListAccountsQuery struct{}
