package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiliiie/newport-bank-backend/internal/auth"
	"github.com/kiliiie/newport-bank-backend/internal/cache"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/dto"
	"github.com/kiliiie/newport-bank-backend/internal/service"
)

// AccountHandler serves the authenticated account endpoints: own statement
// and ledger transactions.
type AccountHandler struct {
	accountSvc *service.AccountService
	ledgerSvc  *service.LedgerService
}

// NewAccountHandler returns a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, ledgerSvc *service.LedgerService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, ledgerSvc: ledgerSvc}
}

// Me godoc
// @Summary      Own profile, balance and transaction history
// @Tags         account
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.StatementResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	st, err := h.accountSvc.Statement(c.Request.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, statementToResponse(st))
}

// Transaction godoc
// @Summary      Record a deposit or withdrawal
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.TransactionRequest  true  "Transaction"
// @Success      200   {object}  dto.ApplyResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /transactions [post]
func (h *AccountHandler) Transaction(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := h.ledgerSvc.Apply(c.Request.Context(), claims.AccountID, req.Type, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, dom.ErrAmountNotPositive), errors.Is(err, dom.ErrUnknownKind):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, dom.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient funds"})
		case errors.Is(err, dom.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ApplyResponse{OK: true, Balance: account.Balance})
}

func statementToResponse(st cache.Statement) dto.StatementResponse {
	txs := make([]dto.TransactionResponse, len(st.Transactions))
	for i, t := range st.Transactions {
		txs[i] = dto.TransactionResponse{
			ID:         t.ID,
			Kind:       t.Kind,
			Amount:     t.Amount,
			OccurredAt: t.OccurredAt,
		}
	}
	return dto.StatementResponse{
		Name:         st.Account.Name,
		Email:        st.Account.Email,
		Balance:      st.Account.Balance,
		Transactions: txs,
	}
}
