package services_test

import (
	"testing"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	ledgerSuite
	alice int64
	bob   int64
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.alice = s.personal("Alice")
	s.bob = s.personal("Bob")
}

func (s *TransactionServiceTestSuite) TestCreatePurchase_Committed() {
	req := s.purchaseRequest(s.alice, domain.ShareMap{s.alice: 1, s.bob: 1})
	req.Value = decimal.RequireFromString("30.50")

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: req,
		Commit:                    true,
	}, member)
	s.Require().NoError(err)
	s.Equal(int64(2), created.LastVersion)

	rev, err := s.svc.Transaction.GetTransactionRevision(s.ctx, s.groupID, created.ID, domain.ViewCommitted, viewer)
	s.Require().NoError(err)
	s.True(rev.Details.Value.Equal(decimal.RequireFromString("30.5")))
	s.True(rev.Details.ConversionRate.Equal(decimal.NewFromInt(1)))

	events := s.notifier.events()
	last := events[len(events)-1]
	s.Equal(domain.EntityKindTransaction, last.Kind)
	s.Equal(created.ID, last.EntityID)
	s.Equal(int64(2), last.Version)
}

func (s *TransactionServiceTestSuite) TestCreatePurchase_WithPositions() {
	req := s.purchaseRequest(s.alice, nil)
	req.Positions = []dto.PositionRequest{
		{Name: "Milk", Price: decimal.NewFromInt(2), CommunistShares: 1},
		{Name: "Cake", Price: decimal.NewFromInt(8), Usages: domain.ShareMap{s.bob: 1}},
	}

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: req,
	}, member)
	s.Require().NoError(err)
	pending, ok := created.Revisions.Pending()
	s.Require().True(ok)
	s.Len(pending.Details.Positions, 2)
	s.Equal([]int64{s.alice, s.bob}, pending.Details.ReferencedAccountIDs())
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_ShapeRules() {
	transfer := s.purchaseRequest(s.alice, domain.ShareMap{s.alice: 1, s.bob: 1})
	_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypeTransfer,
		TransactionDetailsRequest: transfer,
	}, member)
	s.ErrorIs(err, apperrors.ErrValidation, "transfers have exactly one debitor")

	noDebitors := s.purchaseRequest(s.alice, nil)
	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: noDebitors,
	}, member)
	s.ErrorIs(err, apperrors.ErrValidation)

	unnamed := s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1})
	unnamed.Name = ""
	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: unnamed,
	}, member)
	s.ErrorIs(err, apperrors.ErrValidation)

	valid := s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1})
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypeTransfer,
		TransactionDetailsRequest: valid,
	}, member)
	s.Require().NoError(err)
	s.Equal("transfer", created.Type)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_ForeignAccount() {
	other, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Trip", CurrencySymbol: "USD"}, owner)
	s.Require().NoError(err)
	stranger, err := s.svc.Account.CreateAccount(s.ctx, other.GroupID, dto.CreateAccountRequest{
		Type:                  domain.AccountTypePersonal,
		AccountDetailsRequest: dto.AccountDetailsRequest{Name: "Stranger"},
		Commit:                true,
	}, owner)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: s.purchaseRequest(s.alice, domain.ShareMap{stranger.ID: 1}),
	}, member)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_Conflict() {
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1}),
		Commit:                    true,
	}, member)
	s.Require().NoError(err)

	update := s.purchaseRequest(s.bob, domain.ShareMap{s.alice: 1})
	staged, err := s.svc.Transaction.UpdateTransaction(s.ctx, s.groupID, created.ID, dto.UpdateTransactionRequest{
		BaseVersion:               2,
		TransactionDetailsRequest: update,
		Commit:                    true,
	}, member)
	s.Require().NoError(err)
	s.Equal(int64(4), staged.LastVersion)
	s.False(staged.Revisions.HasPending())

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, s.groupID, created.ID, dto.UpdateTransactionRequest{
		BaseVersion:               2,
		TransactionDetailsRequest: update,
	}, owner)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *TransactionServiceTestSuite) TestDeleteAccount_UsedByTransaction() {
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1}),
		Commit:                    true,
	}, member)
	s.Require().NoError(err)

	_, err = s.svc.Account.DeleteAccount(s.ctx, s.groupID, s.bob, 2, member)
	s.Require().NoError(err)
	_, err = s.svc.Account.CommitAccount(s.ctx, s.groupID, s.bob, member)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Transaction.DeleteTransaction(s.ctx, s.groupID, created.ID, created.LastVersion, member)
	s.Require().NoError(err)
	deleted, err := s.svc.Transaction.CommitTransaction(s.ctx, s.groupID, created.ID, member)
	s.Require().NoError(err)
	rev, _ := deleted.Revisions.Committed()
	s.True(rev.Details.Deleted)

	_, err = s.svc.Account.CommitAccount(s.ctx, s.groupID, s.bob, member)
	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestCommitAndDiscard_NothingPending() {
	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1}),
		Commit:                    true,
	}, member)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.CommitTransaction(s.ctx, s.groupID, created.ID, member)
	s.ErrorIs(err, apperrors.ErrNoPendingChanges)
	_, err = s.svc.Transaction.DiscardTransaction(s.ctx, s.groupID, created.ID, member)
	s.ErrorIs(err, apperrors.ErrNoPendingChanges)
}

func (s *TransactionServiceTestSuite) TestListTransactions() {
	for i := 0; i < 3; i++ {
		_, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
			Type:                      domain.TransactionTypePurchase,
			TransactionDetailsRequest: s.purchaseRequest(s.alice, domain.ShareMap{s.bob: 1}),
		}, member)
		s.Require().NoError(err)
	}

	transactions, err := s.svc.Transaction.ListTransactions(s.ctx, s.groupID, viewer)
	s.Require().NoError(err)
	s.Require().Len(transactions, 3)
	s.Less(transactions[0].ID, transactions[1].ID)

	_, err = s.svc.Transaction.ListTransactions(s.ctx, s.groupID, "mallory")
	s.ErrorIs(err, apperrors.ErrForbidden)
}
