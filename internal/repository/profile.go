package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

type ProfileDAO interface {
	FindByID(ctx context.Context, id string) (dao.Profile, error)
	FindByIDs(ctx context.Context, ids []string) ([]dao.Profile, error)
	UpsertEmail(ctx context.Context, id, email string) error
}

type ProfileRepository struct {
	dao ProfileDAO
}

func NewProfileRepository(dao ProfileDAO) *ProfileRepository {
	return &ProfileRepository{
		dao: dao,
	}
}

// FindByID returns nil when the user has no profile row.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	found, err := r.dao.FindByID(ctx, id)
	if errors.Is(err, dao.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	profile := profileToDomain(found)

	return &profile, nil
}

func (r *ProfileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	profiles := make(map[string]domain.Profile, len(found))
	for _, p := range found {
		profiles[p.ID] = profileToDomain(p)
	}

	return profiles, nil
}

func (r *ProfileRepository) RecordEmail(ctx context.Context, id, email string) error {
	if err := r.dao.UpsertEmail(ctx, id, email); err != nil {
		return fmt.Errorf("r.dao.UpsertEmail -> %w", err)
	}

	return nil
}

func profileToDomain(p dao.Profile) domain.Profile {
	return domain.Profile{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		IsAdmin:     p.IsAdmin,
	}
}
