package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func multipartUpload(filename, contentType string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, _ := writer.CreatePart(header)
	_, _ = part.Write(content)
	_ = writer.Close()
	return body, writer.FormDataContentType()
}

func (suite *HandlerTestSuite) TestUploadFile_SniffsMimeType() {
	blobID := int64(3)
	attachment := &domain.FileAttachment{
		FileID:        11,
		TransactionID: 9,
		Pending:       &domain.FileDetails{Filename: "receipt.pdf", BlobID: &blobID, UserID: "alice"},
	}
	suite.mockFileService.On("UploadFile", mock.Anything, int64(1), int64(9),
		mock.MatchedBy(func(req dto.UploadFileRequest) bool {
			return req.Filename == "receipt.pdf" && req.MimeType == "application/pdf" && bytes.Equal(req.Content, pdfContent)
		}), "alice").Return(attachment, nil).Once()

	body, contentType := multipartUpload("receipt.pdf", "application/octet-stream", pdfContent)
	w := suite.do(http.MethodPost, "/api/v1/groups/1/transactions/9/files", body, contentType)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Contains(w.Body.String(), `"fileID":11`)
	suite.Contains(w.Body.String(), `"committedDetails":null`)
}

func (suite *HandlerTestSuite) TestUploadFile_Rejected() {
	suite.mockFileService.On("UploadFile", mock.Anything, int64(1), int64(9),
		mock.MatchedBy(func(req dto.UploadFileRequest) bool { return req.MimeType == "text/plain" }), "alice").
		Return(nil, apperrors.NewValidationFailedError(`mime type "text/plain" is not allowed`)).Once()

	body, contentType := multipartUpload("notes.txt", "text/plain; charset=utf-8", []byte("hello"))
	w := suite.do(http.MethodPost, "/api/v1/groups/1/transactions/9/files", body, contentType)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUploadFile_MissingField() {
	w := suite.do(http.MethodPost, "/api/v1/groups/1/transactions/9/files", bytes.NewBufferString("{}"), "application/json")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDownloadFile() {
	blob := &domain.Blob{BlobID: 3, Hash: "abc123", MimeType: "application/pdf", Size: int64(len(pdfContent)), Content: pdfContent}
	suite.mockFileService.On("ReadFileContent", mock.Anything, int64(1), int64(11), int64(3), "alice").Return(blob, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/1/files/11/blobs/3", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
	suite.Equal(`"abc123"`, w.Header().Get("ETag"))
	suite.Equal(pdfContent, w.Body.Bytes())
}

func (suite *HandlerTestSuite) TestDeleteFile_AlreadyDeleted() {
	suite.mockFileService.On("DeleteFile", mock.Anything, int64(1), int64(11), "alice").
		Return(nil, apperrors.NewValidationFailedError("file 11 is already deleted")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/groups/1/files/11", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}
