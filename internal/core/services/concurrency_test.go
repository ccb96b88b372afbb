package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/shared_ledger_app/internal/apperrors"
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ConcurrencyTestSuite struct {
	ledgerSuite
}

func TestConcurrencyTestSuite(t *testing.T) {
	suite.Run(t, new(ConcurrencyTestSuite))
}

// race runs every fn at once and returns their errors in order.
func (s *ConcurrencyTestSuite) race(fns ...func() error) []error {
	errs := make([]error, len(fns))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i, fn)
	}
	close(start)
	wg.Wait()
	return errs
}

func (s *ConcurrencyTestSuite) TestUpdateAccount_SameBaseVersionHasOneWinner() {
	accountID := s.personal("Alice")

	const writers = 20
	fns := make([]func() error, writers)
	for i := range fns {
		fns[i] = func() error {
			_, err := s.svc.Account.UpdateAccount(s.ctx, s.groupID, accountID, dto.UpdateAccountRequest{
				BaseVersion:           2,
				AccountDetailsRequest: dto.AccountDetailsRequest{Name: "Alice"},
			}, member)
			return err
		}
	}

	var ok, conflicts int
	for _, err := range s.race(fns...) {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrConflict):
			conflicts++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(writers-1, conflicts)
	s.Equal(float64(writers-1), s.counter("ledger_conflicts_total"))

	account, err := s.svc.Account.GetAccount(s.ctx, s.groupID, accountID, viewer)
	s.Require().NoError(err)
	s.Equal(int64(3), account.LastVersion)
}

func (s *ConcurrencyTestSuite) TestCommitAccount_SiblingCyclesCannotBothCommit() {
	p := s.personal("P")
	c1 := s.clearing("C1", domain.ShareMap{p: 1})
	c2 := s.clearing("C2", domain.ShareMap{p: 1})

	_, err := s.svc.Account.UpdateAccount(s.ctx, s.groupID, c1.ID, dto.UpdateAccountRequest{
		BaseVersion:           c1.LastVersion,
		AccountDetailsRequest: s.clearingRequest("C1", domain.ShareMap{c2.ID: 1}),
	}, member)
	s.Require().NoError(err)
	_, err = s.svc.Account.UpdateAccount(s.ctx, s.groupID, c2.ID, dto.UpdateAccountRequest{
		BaseVersion:           c2.LastVersion,
		AccountDetailsRequest: s.clearingRequest("C2", domain.ShareMap{c1.ID: 1}),
	}, member)
	s.Require().NoError(err)

	errs := s.race(
		func() error {
			_, err := s.svc.Account.CommitAccount(s.ctx, s.groupID, c1.ID, member)
			return err
		},
		func() error {
			_, err := s.svc.Account.CommitAccount(s.ctx, s.groupID, c2.ID, member)
			return err
		},
	)

	var ok, cycles int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrCyclicDependency):
			cycles++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, cycles)
	s.Equal(float64(1), s.counter("ledger_cyclic_dependency_rejections_total"))
}

func (s *ConcurrencyTestSuite) TestCommit_DeletionRacesWithReference() {
	alice := s.personal("Alice")
	bob := s.personal("Bob")

	created, err := s.svc.Transaction.CreateTransaction(s.ctx, s.groupID, dto.CreateTransactionRequest{
		Type:                      domain.TransactionTypePurchase,
		TransactionDetailsRequest: s.purchaseRequest(alice, domain.ShareMap{bob: 1}),
	}, member)
	s.Require().NoError(err)
	_, err = s.svc.Account.DeleteAccount(s.ctx, s.groupID, bob, 2, member)
	s.Require().NoError(err)

	errs := s.race(
		func() error {
			_, err := s.svc.Account.CommitAccount(s.ctx, s.groupID, bob, member)
			return err
		},
		func() error {
			_, err := s.svc.Transaction.CommitTransaction(s.ctx, s.groupID, created.ID, member)
			return err
		},
	)

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrValidation):
			rejected++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, ok, "a committed transaction never references a committed deletion")
	s.Equal(1, rejected)
}
