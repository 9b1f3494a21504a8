package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/account-rest-service/internal/validation"
)

// AccountRequest is the payload accepted by create and update. Any "id" in
// the body is ignored.
type AccountRequest struct {
	Name        string  `json:"name" validate:"required,max=64"`
	Email       string  `json:"email" validate:"required,max=64"`
	Address     string  `json:"address" validate:"required,max=256"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	DateJoined  string  `json:"date_joined" validate:"omitempty,datetime=2006-01-02"`
}

// DataValidationError reports why a payload could not be turned into an
// AccountRequest. Fields is empty when the body itself was malformed.
type DataValidationError struct {
	Message string
	Fields  []validation.ValidationError
}

func (e *DataValidationError) Error() string {
	return e.Message
}

// Deserialize decodes and validates a JSON payload.
func Deserialize(payload []byte) (AccountRequest, error) {
	var req AccountRequest

	if err := json.Unmarshal(payload, &req); err != nil {
		return AccountRequest{}, decodeError(err)
	}

	if fields := validation.ValidateStruct(req); fields != nil {
		return AccountRequest{}, &DataValidationError{
			Message: fieldMessage(fields[0]),
			Fields:  fields,
		}
	}
	return req, nil
}

func decodeError(err error) *DataValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return &DataValidationError{
				Message: fmt.Sprintf("Invalid Account: body of request must be a JSON object, got %s", typeErr.Value),
			}
		}
		return &DataValidationError{
			Message: fmt.Sprintf("Invalid Account: invalid type for %s, expected %s but got %s",
				typeErr.Field, typeErr.Type, typeErr.Value),
			Fields: []validation.ValidationError{{
				Field:   typeErr.Field,
				Message: "Expected " + typeErr.Type.String(),
				Type:    "type",
			}},
		}
	}
	return &DataValidationError{
		Message: "Invalid Account: body of request contained bad or no data - " + err.Error(),
	}
}

func fieldMessage(f validation.ValidationError) string {
	switch f.Type {
	case "required":
		return "Invalid Account: missing " + f.Field
	case "datetime":
		return "Invalid Account: bad " + f.Field
	default:
		return fmt.Sprintf("Invalid Account: %s: %s", f.Field, f.Message)
	}
}

// NewAccount builds a record that has not been persisted yet. date_joined
// defaults to today.
func (r AccountRequest) NewAccount() *Account {
	account := &Account{DateJoined: Today()}
	r.Apply(account)
	return account
}

// Apply copies the payload onto an existing record. The identifier is never
// touched; date_joined is only replaced when the payload carries one.
func (r AccountRequest) Apply(account *Account) {
	account.Name = r.Name
	account.Email = r.Email
	account.Address = r.Address
	account.PhoneNumber = r.PhoneNumber
	if r.DateJoined != "" {
		// validated by Deserialize
		joined, _ := time.Parse(DateLayout, r.DateJoined)
		account.DateJoined = joined
	}
}
