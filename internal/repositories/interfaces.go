package repositories

import "context"

// Repository is the aggregate access point for all sub-repositories.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Progress() ProgressRepository

	// WithTransaction executes fn within a database transaction; every
	// repository obtained from the argument operates on that transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns repository initialization and connection checks.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
}
