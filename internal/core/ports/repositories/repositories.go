package repositories

// RepositoryProvider holds the storage dependencies needed by services.
type RepositoryProvider struct {
	Store LedgerStore
}
