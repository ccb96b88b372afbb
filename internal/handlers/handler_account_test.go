package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/handlers"
	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountRevision(ctx context.Context, groupID, accountID int64, view domain.RevisionView, userID string) (*domain.Revision[domain.AccountDetails], error) {
	args := m.Called(ctx, groupID, accountID, view, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision[domain.AccountDetails]), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, groupID int64, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, groupID int64, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, groupID, accountID int64, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, groupID, accountID, baseVersion int64, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, accountID, baseVersion, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) CommitAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DiscardAccount(ctx context.Context, groupID, accountID int64, userID string) (*domain.Account, error) {
	args := m.Called(ctx, groupID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock FileService ---
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) UploadFile(ctx context.Context, groupID, transactionID int64, req dto.UploadFileRequest, userID string) (*domain.FileAttachment, error) {
	args := m.Called(ctx, groupID, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileAttachment), args.Error(1)
}
func (m *MockFileService) DeleteFile(ctx context.Context, groupID, fileID int64, userID string) (*domain.FileAttachment, error) {
	args := m.Called(ctx, groupID, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileAttachment), args.Error(1)
}
func (m *MockFileService) ListFiles(ctx context.Context, groupID, transactionID int64, userID string) ([]domain.FileAttachment, error) {
	args := m.Called(ctx, groupID, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileAttachment), args.Error(1)
}
func (m *MockFileService) ReadFileContent(ctx context.Context, groupID, fileID, blobID int64, userID string) (*domain.Blob, error) {
	args := m.Called(ctx, groupID, fileID, blobID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Blob), args.Error(1)
}

var _ portssvc.FileSvcFacade = (*MockFileService)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockFileService    *MockFileService
	jwtSecret          string
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// generateTestToken creates a dummy JWT for testing.
func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "sla-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockAccountService = new(MockAccountService)
	suite.mockFileService = new(MockFileService)

	cfg := &config.Config{
		JWTSecret:          suite.jwtSecret,
		JWTIssuer:          "sla-test",
		RateLimit:          "1000-M",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	services := &portssvc.ServiceContainer{
		Account: suite.mockAccountService,
		File:    suite.mockFileService,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router, err := handlers.NewRouter(logger, cfg, services, prometheus.NewRegistry())
	suite.Require().NoError(err)
	suite.router = router
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.mockAccountService.AssertExpectations(suite.T())
	suite.mockFileService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken("alice"))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) doJSON(method, path string, payload any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(payload)
	suite.Require().NoError(err)
	return suite.do(method, path, bytes.NewReader(raw), "application/json")
}

func pendingAccount(id int64, version int64, details domain.AccountDetails) *domain.Account {
	return &domain.Account{
		EntityHeader: domain.EntityHeader{ID: id, GroupID: 1, Type: string(domain.AccountTypePersonal), LastVersion: version, CreatedBy: "alice"},
		Revisions:    domain.OnlyPending(domain.Revision[domain.AccountDetails]{Version: version, UserID: "alice", Details: details}),
	}
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		Type:                  domain.AccountTypePersonal,
		AccountDetailsRequest: dto.AccountDetailsRequest{Name: "Alice", Tags: []string{}},
	}
	suite.mockAccountService.On("CreateAccount", mock.Anything, int64(1), req, "alice").
		Return(pendingAccount(5, 1, domain.AccountDetails{Name: "Alice"}), nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/groups/1/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var res dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(int64(5), res.AccountID)
	suite.Equal(int64(1), res.LatestVersion)
	suite.Require().NotNil(res.PendingDetails)
	suite.Equal("Alice", res.PendingDetails.Name)
	suite.Nil(res.CommittedDetails)
}

func (suite *HandlerTestSuite) TestCreateAccount_InvalidBody() {
	w := suite.do(http.MethodPost, "/api/v1/groups/1/accounts", strings.NewReader(`{"type":"savings","name":"x"}`), "application/json")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateAccount_StaleBaseVersion() {
	req := dto.UpdateAccountRequest{BaseVersion: 2, AccountDetailsRequest: dto.AccountDetailsRequest{Name: "Alice", Tags: []string{}}}
	suite.mockAccountService.On("UpdateAccount", mock.Anything, int64(1), int64(5), req, "alice").
		Return(nil, apperrors.NewConflictError("base version 2 is not the latest version 3")).Once()

	w := suite.doJSON(http.MethodPut, "/api/v1/groups/1/accounts/5", req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "base version 2")
}

func (suite *HandlerTestSuite) TestCommitAccount_Cycle() {
	suite.mockAccountService.On("CommitAccount", mock.Anything, int64(1), int64(7), "alice").
		Return(nil, fmt.Errorf("commit: %w", &apperrors.CyclicDependencyError{AccountIDs: []int64{7, 8, 7}})).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/1/accounts/7/commit", nil, "")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error string  `json:"error"`
		Cycle []int64 `json:"cycle"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal([]int64{7, 8, 7}, body.Cycle)
}

func (suite *HandlerTestSuite) TestErrorStatuses() {
	cases := map[error]int{
		apperrors.ErrNoPendingChanges:                     http.StatusConflict,
		apperrors.NewNotFoundError("account 5"):           http.StatusNotFound,
		apperrors.NewValidationFailedError("bad"):         http.StatusBadRequest,
		fmt.Errorf("%w: viewer", apperrors.ErrForbidden):  http.StatusForbidden,
		apperrors.NewAppError(500, "database error", nil): http.StatusInternalServerError,
	}
	for err, status := range cases {
		suite.mockAccountService.On("DiscardAccount", mock.Anything, int64(1), int64(5), "alice").Return(nil, err).Once()
		w := suite.do(http.MethodPost, "/api/v1/groups/1/accounts/5/discard", nil, "")
		suite.Equal(status, w.Code, err.Error())
	}
}

func (suite *HandlerTestSuite) TestGetAccountRevision_CommittedView() {
	rev := &domain.Revision[domain.AccountDetails]{Version: 2, Committed: true, Details: domain.AccountDetails{Name: "Alice"}}
	suite.mockAccountService.On("GetAccountRevision", mock.Anything, int64(1), int64(5), domain.ViewCommitted, "alice").Return(rev, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/1/accounts/5/revision?view=committed", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var res dto.AccountRevisionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(int64(2), res.Version)
	suite.True(res.Committed)
}

func (suite *HandlerTestSuite) TestDeleteAccount_RequiresBaseVersion() {
	w := suite.do(http.MethodDelete, "/api/v1/groups/1/accounts/5", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockAccountService.On("DeleteAccount", mock.Anything, int64(1), int64(5), int64(3), "alice").
		Return(pendingAccount(5, 4, domain.AccountDetails{Name: "Alice", Deleted: true}), nil).Once()
	w = suite.do(http.MethodDelete, "/api/v1/groups/1/accounts/5?baseVersion=3", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"deleted":true`)
}

func (suite *HandlerTestSuite) TestInvalidPathID() {
	w := suite.do(http.MethodGet, "/api/v1/groups/1/accounts/abc", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/groups/1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestHealthAndMetrics() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}
