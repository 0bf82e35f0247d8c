package handler

import (
	"net/http"

	"roost/internal/middleware"
	"roost/internal/repository"

	"github.com/gin-gonic/gin"
)

// WalletHandler is the earnings view shared by hosts and partners: live
// balances summed from the ledger and the transaction history behind them.
type WalletHandler struct {
	txns *repository.TransactionRepository
}

func NewWalletHandler(txns *repository.TransactionRepository) *WalletHandler {
	return &WalletHandler{txns: txns}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	pending, err := h.txns.PendingBalance(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	available, err := h.txns.AvailableBalance(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending_cents":   pending,
		"available_cents": available,
	})
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.txns.ListByUser(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
