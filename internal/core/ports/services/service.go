package services

// ServiceContainer holds instances of all the application services.
// It is the entry point the handlers use.
type ServiceContainer struct {
	Group       GroupSvcFacade
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	File        FileSvcFacade
}
