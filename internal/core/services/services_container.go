package services

import (
	portsrepo "github.com/SscSPs/shared_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The group service is built first and then authorizes every other service.
func NewServiceContainer(cfg config.LedgerConfig, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	group := NewGroupService(repos.Store, options...)
	container.Group = group

	withAuth := append(append([]ServiceOption{}, options...), WithGroupAuthorizer(group))

	files := NewFileService(repos.Store, cfg, withAuth...)
	container.File = files
	container.Account = NewAccountService(repos.Store, withAuth...)
	container.Transaction = NewTransactionService(repos.Store, files, withAuth...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.GroupSvcFacade       = (*GroupService)(nil)
	_ portssvc.GroupAuthorizerSvc   = (*GroupService)(nil)
	_ portssvc.TransactionSvcFacade = (*TransactionService)(nil)
)
