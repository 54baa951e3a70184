package service

import (
	"context"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

type StatsService struct {
	Store store.Store
}

func (s *StatsService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.Store.Users().Stats(ctx)
}
