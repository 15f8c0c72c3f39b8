package api

import (
	"errors"   // Sentinel matching
	"net/http" // HTTP status codes

	"wallet_balance/internal/domain"     // Importing domain models
	"wallet_balance/internal/middleware" // Request id lookup
	"wallet_balance/internal/repository" // Data access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// DepositHandler creates the wallet record with its initial balance
func DepositHandler(repo repository.WalletRepository, resp Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := domain.WalletBalance{
			ID:             walletID(c),                    // Validated path id
			Balance:        amount(c),                      // Validated query_balance
			AdditionalInfo: c.GetString(additionalInfoKey), // Optional metadata
		}
		err := repo.Create(c.Request.Context(), rec)
		switch {
		case err == nil:
			logrus.WithFields(logrus.Fields{
				"request_id": middleware.GetRequestID(c),
				"wallet_id":  rec.ID,
				"amount":     rec.Balance,
			}).Info("Wallet created")
			resp.Respond(c, OutcomeDeposited)
		case errors.Is(err, repository.ErrWalletExists):
			// Duplicate id, the insert was rolled back
			resp.Respond(c, OutcomeExists)
		default:
			internalError(c, resp, "Deposit failed", err)
		}
	}
}

// GetBalanceHandler returns the raw balance of a wallet
func GetBalanceHandler(repo repository.WalletRepository, resp Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := repo.Get(c.Request.Context(), walletID(c))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, rec.Balance) // Bare integer body
		case errors.Is(err, repository.ErrWalletNotFound):
			resp.Respond(c, OutcomeNotFound)
		default:
			internalError(c, resp, "Balance lookup failed", err)
		}
	}
}

// UpdateBalanceHandler overwrites the balance of an existing wallet
func UpdateBalanceHandler(repo repository.WalletRepository, resp Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := walletID(c)
		rec, err := repo.UpdateBalance(c.Request.Context(), id, amount(c))
		switch {
		case err == nil:
			logrus.WithFields(logrus.Fields{
				"request_id": middleware.GetRequestID(c),
				"wallet_id":  rec.ID,
				"amount":     rec.Balance,
			}).Info("Wallet updated")
			resp.Respond(c, OutcomeUpdated)
		case errors.Is(err, repository.ErrWalletNotFound):
			resp.Respond(c, OutcomeNotFound)
		case errors.Is(err, repository.ErrIntegrity):
			logrus.WithFields(logrus.Fields{
				"request_id": middleware.GetRequestID(c),
				"wallet_id":  id,
				"error":      err.Error(),
			}).Warn("Update rolled back")
			resp.Respond(c, OutcomeIntegrity)
		default:
			internalError(c, resp, "Update failed", err)
		}
	}
}

// DeleteHandler removes a wallet record
func DeleteHandler(repo repository.WalletRepository, resp Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := walletID(c)
		err := repo.Delete(c.Request.Context(), id)
		switch {
		case err == nil:
			logrus.WithFields(logrus.Fields{
				"request_id": middleware.GetRequestID(c),
				"wallet_id":  id,
			}).Info("Wallet deleted")
			resp.Respond(c, OutcomeDeleted)
		case errors.Is(err, repository.ErrWalletNotFound):
			resp.Respond(c, OutcomeNotFound)
		default:
			internalError(c, resp, "Delete failed", err)
		}
	}
}

// internalError logs a storage failure and answers 500 for this request only
func internalError(c *gin.Context, resp Responder, msg string, err error) {
	_ = c.Error(err) // Surface in the access log
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"wallet_id":  walletID(c),
		"error":      err.Error(),
	}).Error(msg)
	resp.Respond(c, OutcomeInternal)
}
