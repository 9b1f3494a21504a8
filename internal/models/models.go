package models

import (
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for date_joined.
const DateLayout = "2006-01-02"

// Account is the in-memory projection of one row of the accounts table.
// ID is zero until the repository has inserted the record.
type Account struct {
	ID          int64
	Name        string
	Email       string
	Address     string
	PhoneNumber *string
	DateJoined  time.Time
}

// AccountView is the flat wire representation of an Account.
type AccountView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	DateJoined  string  `json:"date_joined"`
}

// Serialize maps the record onto its wire representation.
func (a *Account) Serialize() AccountView {
	return AccountView{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Address:     a.Address,
		PhoneNumber: a.PhoneNumber,
		DateJoined:  a.DateJoined.Format(DateLayout),
	}
}

// Account converts a view back into a record. It fails only when
// DateJoined is not a valid date.
func (v *AccountView) Account() (*Account, error) {
	joined, err := time.Parse(DateLayout, v.DateJoined)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:          v.ID,
		Name:        v.Name,
		Email:       v.Email,
		Address:     v.Address,
		PhoneNumber: v.PhoneNumber,
		DateJoined:  joined,
	}, nil
}

// Today returns the current UTC calendar date at midnight.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
