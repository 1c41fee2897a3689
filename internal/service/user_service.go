package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/safetrack/incident-api/internal/dto"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

type userLister interface {
	List(ctx context.Context) ([]dto.UserSummary, error)
}

// UserService exposes the user directory consumed by assignee pickers.
type UserService struct {
	repo   userLister
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userLister, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns every registered user as an id/username pair.
func (s *UserService) List(ctx context.Context) ([]dto.UserSummary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}
