package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/pkg/jwthelper"
)

type EventReader interface {
	FindByCode(ctx context.Context, code string) (domain.Event, error)
}

type AdminLinkService struct {
	events    EventReader
	secret    []byte
	adminPath string
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewAdminLinkService(events EventReader, auth *config.AuthConfig, sim *config.SimConfig, m *metrics.Metrics) *AdminLinkService {
	return &AdminLinkService{
		events:    events,
		secret:    []byte(auth.AdminLinkSecret),
		adminPath: sim.AdminPath,
		metrics:   m,
		now:       time.Now,
	}
}

// Issue signs a link into the simulator's admin console for eventCode, valid for domain.AdminLinkTTL.
func (s *AdminLinkService) Issue(ctx context.Context, eventCode, adminUserID string) (domain.AdminLink, error) {
	event, err := s.events.FindByCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.AdminLink{}, ErrEventNotFound
		}

		return domain.AdminLink{}, fmt.Errorf("s.events.FindByCode -> %w", err)
	}

	if !event.State.AdminLinkAvailable() {
		return domain.AdminLink{}, &StateError{Err: ErrAdminLinkUnavailable, State: event.State}
	}

	expiresAt := s.now().Add(domain.AdminLinkTTL)
	token, err := jwthelper.SignAdminLink(s.secret, event.Code, adminUserID, expiresAt)
	if err != nil {
		return domain.AdminLink{}, fmt.Errorf("jwthelper.SignAdminLink -> %w", err)
	}

	s.metrics.IncAdminLinksIssued()

	return domain.AdminLink{
		EventCode: event.Code,
		Token:     token,
		URL:       s.adminURL(event.SimURL, event.Code, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks token for eventCode. It does not touch the store.
func (s *AdminLinkService) Verify(eventCode, token string) (domain.AdminLinkClaims, error) {
	claims, err := jwthelper.ParseAdminLink(s.secret, token, s.now)
	if err != nil {
		if errors.Is(err, jwthelper.ErrExpiredToken) {
			s.metrics.IncAdminLinkVerify("expired")
			return domain.AdminLinkClaims{}, ErrTokenExpired
		}

		s.metrics.IncAdminLinkVerify("invalid")

		return domain.AdminLinkClaims{}, ErrTokenInvalid
	}

	if claims.EventCode != eventCode {
		s.metrics.IncAdminLinkVerify("mismatch")
		return domain.AdminLinkClaims{}, ErrTokenEventMismatch
	}

	s.metrics.IncAdminLinkVerify("ok")

	return domain.AdminLinkClaims{
		EventCode:   claims.EventCode,
		AdminUserID: claims.AdminUserID,
	}, nil
}

func (s *AdminLinkService) adminURL(simURL, eventCode, token string) string {
	q := url.Values{}
	q.Set("event_code", eventCode)
	q.Set("admin_token", token)

	return strings.TrimRight(simURL, "/") + s.adminPath + "?" + q.Encode()
}
