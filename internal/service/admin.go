package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mintsim/arena-api/internal/domain"
)

// AdminAllowlist is the set of emails granted admin regardless of their profile flag.
// Built once from config; read-only afterwards.
type AdminAllowlist struct {
	emails map[string]struct{}
}

func NewAdminAllowlist(emails []string) *AdminAllowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}

	return &AdminAllowlist{emails: set}
}

func (a *AdminAllowlist) Contains(email string) bool {
	if a == nil || email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]

	return ok
}

type AdminService struct {
	profiles  ProfileReader
	allowlist *AdminAllowlist
}

func NewAdminService(profiles ProfileReader, allowlist *AdminAllowlist) *AdminService {
	return &AdminService{
		profiles:  profiles,
		allowlist: allowlist,
	}
}

// IsAdmin checks the persisted profile flag first, then the allowlist against the
// token email or, failing that, the profile email.
func (s *AdminService) IsAdmin(ctx context.Context, identity domain.Identity) (bool, error) {
	if identity.UserID == "" {
		return false, nil
	}

	profile, err := s.profiles.FindByID(ctx, identity.UserID)
	if err != nil {
		return false, fmt.Errorf("s.profiles.FindByID -> %w", err)
	}

	if profile != nil && profile.IsAdmin {
		return true, nil
	}

	email := identity.Email
	if email == "" && profile != nil {
		email = profile.Email
	}

	return s.allowlist.Contains(email), nil
}

func (s *AdminService) RequireAdmin(ctx context.Context, identity domain.Identity) error {
	ok, err := s.IsAdmin(ctx, identity)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	return nil
}
