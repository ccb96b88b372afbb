package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts of one group.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:account_id", h.getAccount)
		accounts.GET("/:account_id/revision", h.getAccountRevision)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.DELETE("/:account_id", h.deleteAccount)
		accounts.POST("/:account_id/commit", h.commitAccount)
		accounts.POST("/:account_id/discard", h.discardAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a personal or clearing account. The first revision stays pending unless commit is set.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 422 {object} map[string]string "Cyclic clearing dependency"
// @Security BearerAuth
// @Router /groups/{group_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("group_id", groupID))
	logger.Info("Received request to create account", slog.String("account_name", req.Name), slog.String("type", string(req.Type)))

	account, err := h.accountService.CreateAccount(c.Request.Context(), groupID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.Int64("account_id", account.ID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Returns the pending and committed details of an account side by side
// @Tags accounts
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   account_id path int true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /groups/{group_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), groupID, accountID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("account_id", accountID)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountRevision resolves ?view=committed|latest (latest by default).
func (h *accountHandler) getAccountRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	view := domain.RevisionView(c.DefaultQuery("view", string(domain.ViewLatest)))
	rev, err := h.accountService.GetAccountRevision(c.Request.Context(), groupID, accountID, view, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("account_id", accountID)), err, "Failed to retrieve account revision")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountRevisionResponse(*rev))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), groupID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// updateAccount godoc
// @Summary Stage an account change
// @Description Replaces the pending revision. baseVersion must name the latest version or the request fails with 409.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   account_id path int true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Full account details"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Stale base version"
// @Security BearerAuth
// @Router /groups/{group_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("account_id", accountID), slog.Int64("base_version", req.BaseVersion))
	logger.Info("Received request to update account")

	account, err := h.accountService.UpdateAccount(c.Request.Context(), groupID, accountID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount stages a deletion; ?baseVersion= is required.
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	var req dto.DeleteAccountRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for DeleteAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("account_id", accountID))
	logger.Info("Received request to delete account")

	account, err := h.accountService.DeleteAccount(c.Request.Context(), groupID, accountID, req.BaseVersion, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) commitAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("account_id", accountID))
	account, err := h.accountService.CommitAccount(c.Request.Context(), groupID, accountID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to commit account")
		return
	}

	logger.Info("Account committed", slog.Int64("version", account.Revisions.LatestVersion()))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) discardAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	accountID, ok := int64Param(c, "account_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.DiscardAccount(c.Request.Context(), groupID, accountID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("account_id", accountID)), err, "Failed to discard account changes")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
