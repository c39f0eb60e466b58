package dataset

import (
	"context"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

// Store holds the donor dataset loaded once at startup. It is immutable
// after construction, which is what makes sharing it across concurrent
// request handlers safe; callers must treat the returned slice as read-only.
type Store struct {
	donors []domain.DonorRecord
}

func NewStore(donors []domain.DonorRecord) *Store {
	return &Store{donors: donors}
}

func NewStoreFromLoader(ctx context.Context, loader *Loader) (*Store, error) {
	donors, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{donors: donors}, nil
}

func (s *Store) Donors(context.Context) ([]domain.DonorRecord, error) {
	return s.donors, nil
}
