package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/eaglebank/account-rest-service/internal/cqrs"
	"github.com/eaglebank/account-rest-service/internal/errs"
	"github.com/eaglebank/account-rest-service/internal/middleware"
	"github.com/eaglebank/account-rest-service/internal/models"
	"github.com/eaglebank/account-rest-service/internal/repository"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
// GetAccount returns (nil, nil) for an unknown id.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
	baseURL  string
}

// NewAccountHandler builds Location headers from baseURL when it is set, and
// from the incoming request otherwise.
func NewAccountHandler(commands AccountCommander, queries AccountQuerier, baseURL string) *AccountHandler {
	return &AccountHandler{
		commands: commands,
		queries:  queries,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	log := middleware.GetLogger(c)
	log.Info().Msg("Request to create an Account")

	req, ok := h.bindAccount(c)
	if !ok {
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{Payload: req})
	if err != nil {
		h.respondWithStoreError(c, err, "Failed to create account")
		return
	}

	log.Info().Int64("account_id", account.ID).Msg("Account created")
	c.Header("Location", h.accountURL(c, account.ID))
	c.JSON(http.StatusCreated, account.Serialize())
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	log := middleware.GetLogger(c)
	log.Info().Msg("Request to list all Accounts")

	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{})
	if err != nil {
		h.respondWithStoreError(c, err, "Failed to list accounts")
		return
	}

	views := make([]models.AccountView, len(accounts))
	for i := range accounts {
		views[i] = accounts[i].Serialize()
	}
	log.Info().Int("count", len(views)).Msg("Returning accounts")
	c.JSON(http.StatusOK, views)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	middleware.GetLogger(c).Info().Int64("account_id", id).Msg("Request to read an Account")

	account, ok := h.findAccount(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, account.Serialize())
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	middleware.GetLogger(c).Info().Int64("account_id", id).Msg("Request to update an Account")

	account, ok := h.findAccount(c, id)
	if !ok {
		return
	}

	req, ok := h.bindAccount(c)
	if !ok {
		return
	}

	updated, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		Account: account,
		Payload: req,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			middleware.RespondWithError(c, notFound(id))
			return
		}
		h.respondWithStoreError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, updated.Serialize())
}

// DeleteAccount succeeds whether or not the account exists.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	log := middleware.GetLogger(c)
	log.Info().Int64("account_id", id).Msg("Request to delete an Account")

	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: id})
	if err != nil {
		h.respondWithStoreError(c, err, "Failed to delete account")
		return
	}
	if account != nil {
		if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{AccountID: id}); err != nil {
			h.respondWithStoreError(c, err, "Failed to delete account")
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// accountID parses the :id path parameter. Only plain decimal digits that
// fit the BIGINT key can name an account; anything else, signs included, is
// answered like an unknown route.
func (h *AccountHandler) accountID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		middleware.RespondWithError(c, errs.NewNotFoundError(
			fmt.Sprintf("Account with id [%s] could not be found.", raw)))
		return 0, false
	}
	return id, true
}

func (h *AccountHandler) findAccount(c *gin.Context, id int64) (*models.Account, bool) {
	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: id})
	if err != nil {
		h.respondWithStoreError(c, err, "Failed to read account")
		return nil, false
	}
	if account == nil {
		middleware.RespondWithError(c, notFound(id))
		return nil, false
	}
	return account, true
}

func (h *AccountHandler) bindAccount(c *gin.Context) (models.AccountRequest, bool) {
	body, err := c.GetRawData()
	if err != nil {
		middleware.RespondWithError(c, errs.NewBadRequestError("Invalid Account: unable to read request body", nil))
		return models.AccountRequest{}, false
	}

	req, err := models.Deserialize(body)
	if err != nil {
		var dve *models.DataValidationError
		if errors.As(err, &dve) {
			middleware.GetLogger(c).Warn().Str("reason", dve.Message).Msg("Rejected Account payload")
			middleware.RespondWithError(c, errs.NewBadRequestError(dve.Message, fieldErrors(dve)))
			return models.AccountRequest{}, false
		}
		middleware.RespondWithError(c, errs.NewBadRequestError(err.Error(), nil))
		return models.AccountRequest{}, false
	}
	return req, true
}

// respondWithStoreError maps persistence failures: data the store rejected
// is the client's fault, everything else is a 500.
func (h *AccountHandler) respondWithStoreError(c *gin.Context, err error, message string) {
	if repository.IsClientError(err) {
		middleware.GetLogger(c).Warn().Err(err).Msg(message)
		middleware.RespondWithError(c, errs.NewBadRequestError("Invalid Account: rejected by the data store", nil))
		return
	}
	middleware.GetLogger(c).Error().Err(err).Msg(message)
	middleware.RespondWithError(c, errs.NewInternalServerError())
}

func (h *AccountHandler) accountURL(c *gin.Context, id int64) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	return fmt.Sprintf("%s/accounts/%d", base, id)
}

func notFound(id int64) *errs.HTTPError {
	return errs.NewNotFoundError(fmt.Sprintf("Account with id [%d] could not be found.", id))
}

func fieldErrors(dve *models.DataValidationError) []errs.FieldError {
	if len(dve.Fields) == 0 {
		return nil
	}
	out := make([]errs.FieldError, len(dve.Fields))
	for i, f := range dve.Fields {
		out[i] = errs.FieldError{Field: f.Field, Error: f.Message}
	}
	return out
}
