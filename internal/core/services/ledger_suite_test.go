package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/core/services"
	"github.com/SscSPs/shared_ledger_app/internal/dto"
	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
	"github.com/SscSPs/shared_ledger_app/internal/platform/metrics"
	"github.com/SscSPs/shared_ledger_app/internal/repositories/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	owner  = "alice"
	member = "bob"
	viewer = "victor"
)

// MockCommitNotifier is a mock type for the CommitNotifier interface
type MockCommitNotifier struct {
	mock.Mock
}

func (m *MockCommitNotifier) NotifyCommit(ctx context.Context, event domain.CommitEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// events returns the commit events received so far.
func (m *MockCommitNotifier) events() []domain.CommitEvent {
	var out []domain.CommitEvent
	for _, call := range m.Calls {
		out = append(out, call.Arguments.Get(1).(domain.CommitEvent))
	}
	return out
}

// ledgerSuite wires the services to an in-memory store.
type ledgerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	registry *prometheus.Registry
	notifier *MockCommitNotifier
	svc      *portssvc.ServiceContainer
	now      time.Time
	groupID  int64
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.registry = prometheus.NewRegistry()
	s.notifier = new(MockCommitNotifier)
	s.notifier.On("NotifyCommit", mock.Anything, mock.Anything).Return(nil)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.svc = services.NewServiceContainer(
		config.LedgerConfig{MaxUploadBytes: 64, AllowedMimeTypes: []string{"application/pdf", "image/png"}},
		portsrepo.RepositoryProvider{Store: s.store},
		services.WithMetrics(metrics.New(s.registry)),
		services.WithCommitNotifier(s.notifier),
		services.WithClock(func() time.Time { return s.now }),
	)

	group, err := s.svc.Group.CreateGroup(s.ctx, dto.CreateGroupRequest{Name: "Flat 3B", CurrencySymbol: "EUR"}, owner)
	s.Require().NoError(err)
	s.groupID = group.GroupID

	_, err = s.svc.Group.AddMember(s.ctx, s.groupID, dto.AddGroupMemberRequest{UserID: member, Role: domain.RoleMember}, owner)
	s.Require().NoError(err)
	_, err = s.svc.Group.AddMember(s.ctx, s.groupID, dto.AddGroupMemberRequest{UserID: viewer, Role: domain.RoleViewer}, owner)
	s.Require().NoError(err)
}

// counter sums all series of a counter family.
func (s *ledgerSuite) counter(name string) float64 {
	families, err := s.registry.Gather()
	s.Require().NoError(err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func (s *ledgerSuite) personal(name string) int64 {
	account, err := s.svc.Account.CreateAccount(s.ctx, s.groupID, dto.CreateAccountRequest{
		Type:                  domain.AccountTypePersonal,
		AccountDetailsRequest: dto.AccountDetailsRequest{Name: name},
		Commit:                true,
	}, member)
	s.Require().NoError(err)
	return account.ID
}

func (s *ledgerSuite) clearingRequest(name string, shares domain.ShareMap) dto.AccountDetailsRequest {
	dateInfo := s.now
	return dto.AccountDetailsRequest{Name: name, DateInfo: &dateInfo, ClearingShares: shares}
}

func (s *ledgerSuite) clearing(name string, shares domain.ShareMap) *domain.Account {
	account, err := s.svc.Account.CreateAccount(s.ctx, s.groupID, dto.CreateAccountRequest{
		Type:                  domain.AccountTypeClearing,
		AccountDetailsRequest: s.clearingRequest(name, shares),
		Commit:                true,
	}, member)
	s.Require().NoError(err)
	return account
}

func (s *ledgerSuite) purchaseRequest(creditor int64, debitors domain.ShareMap) dto.TransactionDetailsRequest {
	return dto.TransactionDetailsRequest{
		Name:           "Groceries",
		CurrencySymbol: "EUR",
		BilledAt:       s.now,
		CreditorShares: domain.ShareMap{creditor: 1},
		DebitorShares:  debitors,
	}
}
