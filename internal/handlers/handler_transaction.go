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

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers transaction routes and their attachment sub-routes.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade, fileService portssvc.FileSvcFacade) {
	h := newTransactionHandler(transactionService)
	fh := newFileHandler(fileService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transaction_id", h.getTransaction)
		transactions.GET("/:transaction_id/revision", h.getTransactionRevision)
		transactions.PUT("/:transaction_id", h.updateTransaction)
		transactions.DELETE("/:transaction_id", h.deleteTransaction)
		transactions.POST("/:transaction_id/commit", h.commitTransaction)
		transactions.POST("/:transaction_id/discard", h.discardTransaction)

		transactions.POST("/:transaction_id/files", fh.uploadFile)
		transactions.GET("/:transaction_id/files", fh.listFiles)
	}
}

// createTransaction godoc
// @Summary Create a new transaction
// @Description Creates a purchase or transfer. The first revision stays pending unless commit is set.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /groups/{group_id}/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("group_id", groupID))
	logger.Info("Received request to create transaction", slog.String("type", string(req.Type)), slog.String("value", req.Value.String()))

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), groupID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created successfully", slog.Int64("transaction_id", transaction.ID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transactions, err := h.transactionService.ListTransactions(c.Request.Context(), groupID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(transactions))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transaction, files, err := h.transactionService.GetTransactionWithFiles(c.Request.Context(), groupID, transactionID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("transaction_id", transactionID)), err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionWithFilesResponse(transaction, files))
}

func (h *transactionHandler) getTransactionRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	view := domain.RevisionView(c.DefaultQuery("view", string(domain.ViewLatest)))
	rev, err := h.transactionService.GetTransactionRevision(c.Request.Context(), groupID, transactionID, view, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("transaction_id", transactionID)), err, "Failed to retrieve transaction revision")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionRevisionResponse(*rev))
}

func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("transaction_id", transactionID), slog.Int64("base_version", req.BaseVersion))
	logger.Info("Received request to update transaction")

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), groupID, transactionID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	var req dto.DeleteTransactionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for DeleteTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("transaction_id", transactionID))
	transaction, err := h.transactionService.DeleteTransaction(c.Request.Context(), groupID, transactionID, req.BaseVersion, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

// commitTransaction godoc
// @Summary Commit pending changes
// @Description Commits the pending revision and any pending attachment changes of the transaction.
// @Tags transactions
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   transaction_id path int true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 409 {object} map[string]string "Nothing to commit"
// @Security BearerAuth
// @Router /groups/{group_id}/transactions/{transaction_id}/commit [post]
func (h *transactionHandler) commitTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("transaction_id", transactionID))
	transaction, err := h.transactionService.CommitTransaction(c.Request.Context(), groupID, transactionID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to commit transaction")
		return
	}

	logger.Info("Transaction committed", slog.Int64("version", transaction.Revisions.LatestVersion()))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) discardTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	transactionID, ok := int64Param(c, "transaction_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transaction, err := h.transactionService.DiscardTransaction(c.Request.Context(), groupID, transactionID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("transaction_id", transactionID)), err, "Failed to discard transaction changes")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}
