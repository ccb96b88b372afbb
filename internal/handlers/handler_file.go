package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/middleware"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// uploadReadLimit bounds how much of a single upload is read into memory.
// The configured per-file limit is enforced by the file service.
const uploadReadLimit = 64 << 20

// fileHandler handles attachment uploads and downloads.
type fileHandler struct {
	fileService portssvc.FileSvcFacade
}

func newFileHandler(fs portssvc.FileSvcFacade) *fileHandler {
	return &fileHandler{fileService: fs}
}

// registerFileRoutes registers routes addressing attachments by their own id.
func registerFileRoutes(rg *gin.RouterGroup, fileService portssvc.FileSvcFacade) {
	h := newFileHandler(fileService)

	files := rg.Group("/files")
	{
		files.DELETE("/:file_id", h.deleteFile)
		files.GET("/:file_id/blobs/:blob_id", h.downloadFile)
	}
}

// detectMimeType prefers the declared part type and sniffs the content otherwise.
func detectMimeType(declared string, content []byte) string {
	declared, _, _ = strings.Cut(declared, ";")
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	detected, _, _ := strings.Cut(mimetype.Detect(content).String(), ";")
	return detected
}

// uploadFile godoc
// @Summary Attach a file to a transaction
// @Description Uploads the multipart field "file". Identical content is stored once. The attachment stays pending until the transaction is committed.
// @Tags files
// @Accept  multipart/form-data
// @Produce  json
// @Param   group_id path int true "Group ID"
// @Param   transaction_id path int true "Transaction ID"
// @Param   file formData file true "Attachment"
// @Success 201 {object} dto.FileResponse
// @Failure 400 {object} map[string]string "Empty, oversized or disallowed upload"
// @Security BearerAuth
// @Router /groups/{group_id}/transactions/{transaction_id}/files [post]
func (h *fileHandler) uploadFile(c *gin.Context) {
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

	header, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Missing multipart field for UploadFile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'file' is required"})
		return
	}
	part, err := header.Open()
	if err != nil {
		respondWithError(c, logger, err, "Failed to read upload")
		return
	}
	defer part.Close()
	content, err := io.ReadAll(io.LimitReader(part, uploadReadLimit+1))
	if err != nil {
		respondWithError(c, logger, err, "Failed to read upload")
		return
	}

	req := dto.UploadFileRequest{
		Filename: header.Filename,
		MimeType: detectMimeType(header.Header.Get("Content-Type"), content),
		Content:  content,
	}
	logger = logger.With(slog.Int64("transaction_id", transactionID))
	logger.Info("Received upload", slog.String("filename", req.Filename), slog.String("mime_type", req.MimeType), slog.Int("size", len(content)))

	file, err := h.fileService.UploadFile(c.Request.Context(), groupID, transactionID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to upload file")
		return
	}
	c.JSON(http.StatusCreated, dto.ToFileResponse(file))
}

func (h *fileHandler) listFiles(c *gin.Context) {
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

	files, err := h.fileService.ListFiles(c.Request.Context(), groupID, transactionID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list files")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFilesResponse(files))
}

func (h *fileHandler) deleteFile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	fileID, ok := int64Param(c, "file_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	file, err := h.fileService.DeleteFile(c.Request.Context(), groupID, fileID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("file_id", fileID)), err, "Failed to delete file")
		return
	}
	c.JSON(http.StatusOK, dto.ToFileResponse(file))
}

// downloadFile streams the blob; the blob id must be referenced by one of the file's slots.
func (h *fileHandler) downloadFile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID, ok := int64Param(c, "group_id")
	if !ok {
		return
	}
	fileID, ok := int64Param(c, "file_id")
	if !ok {
		return
	}
	blobID, ok := int64Param(c, "blob_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	blob, err := h.fileService.ReadFileContent(c.Request.Context(), groupID, fileID, blobID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.Int64("file_id", fileID)), err, "Failed to read file")
		return
	}
	c.Header("ETag", strconv.Quote(blob.Hash))
	c.Data(http.StatusOK, blob.MimeType, blob.Content)
}
