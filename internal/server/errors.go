package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/opencampus/paygate/internal/catalog/domain"
	coupondomain "github.com/opencampus/paygate/internal/coupon/domain"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	settlementdomain "github.com/opencampus/paygate/internal/settlement/domain"
	walletdomain "github.com/opencampus/paygate/internal/wallet/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErrs.Errors,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, entitlementdomain.ErrInvalidItemRef),
		errors.Is(err, entitlementdomain.ErrInvalidUser),
		errors.Is(err, entitlementdomain.ErrInvalidAmount):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, coupondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, catalogdomain.ErrCourseMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "course_mismatch",
			Message: err.Error(),
		}
	case errors.Is(err, settlementdomain.ErrMissingConfirmation):
		return http.StatusConflict, errorPayload{
			Type:    "missing_confirmation",
			Message: "confirmation token missing, expired, or already used",
		}
	case errors.Is(err, settlementdomain.ErrCostMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "cost_mismatch",
			Message: "claimed cost does not match any configured condition",
		}
	case errors.Is(err, walletdomain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_balance",
			Message: "wallet balance does not cover the charge",
		}
	case errors.Is(err, walletdomain.ErrAccountNotFound):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "wallet_account_not_found",
			Message: "no wallet account for this user",
		}
	case errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrNotUsable),
		errors.Is(err, coupondomain.ErrExhausted):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "coupon_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, settlementdomain.ErrLedgerDebitFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "ledger_debit_failed",
			Message: "payment recorded but the wallet debit failed; the attempt is queued for reconciliation",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
