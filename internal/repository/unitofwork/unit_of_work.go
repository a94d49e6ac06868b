package unitofwork

import (
	"context"

	"portfolio-intro-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	IntroRepository() contract.IntroRepository
}
