package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/pkg/jwthelper"
)

type ProfileReader interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}

type IdentityService struct {
	signingKey       []byte
	legacyHeaderMode bool
	profiles         ProfileReader
}

func NewIdentityService(conf *config.AuthConfig, profiles ProfileReader) *IdentityService {
	return &IdentityService{
		signingKey:       []byte(conf.JWTSigningKey),
		legacyHeaderMode: conf.LegacyHeaderMode,
		profiles:         profiles,
	}
}

// Resolve turns the credentials presented with a request into an Identity.
// A verified token always wins; a legacy header alongside it must name the same user.
func (s *IdentityService) Resolve(ctx context.Context, sources ...domain.IdentitySource) (domain.Identity, error) {
	var (
		verified *domain.VerifiedSource
		legacy   *domain.LegacyHeaderSource
	)
	for _, src := range sources {
		switch v := src.(type) {
		case domain.VerifiedSource:
			verified = &v
		case domain.LegacyHeaderSource:
			if v.UserID != "" {
				legacy = &v
			}
		}
	}

	if verified != nil {
		claims, err := jwthelper.ParseToken(s.signingKey, verified.Token)
		if err != nil {
			if errors.Is(err, jwthelper.ErrExpiredToken) {
				return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredential, ErrCredentialExpired)
			}

			return domain.Identity{}, ErrInvalidCredential
		}

		if legacy != nil && legacy.UserID != claims.Subject {
			return domain.Identity{}, ErrIdentityMismatch
		}

		return domain.Identity{
			UserID:   claims.Subject,
			Email:    claims.Email,
			Verified: true,
		}, nil
	}

	if legacy == nil || !s.legacyHeaderMode {
		return domain.Identity{}, ErrUnauthenticated
	}

	identity := domain.Identity{UserID: legacy.UserID}

	profile, err := s.profiles.FindByID(ctx, legacy.UserID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("s.profiles.FindByID -> %w", err)
	}
	if profile != nil {
		identity.Email = profile.Email
	}

	return identity, nil
}
