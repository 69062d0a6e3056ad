package reasons

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

var codePattern = regexp.MustCompile(`^[a-z0-9_]{2,64}$`)

// Service manages the movement reason catalogue. Seeded reasons ship with the
// schema and can be listed but never removed.
type Service interface {
	List(ctx context.Context) ([]models.Reason, error)
	Add(ctx context.Context, code, label string) (*models.Reason, error)
	Remove(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reasons repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Reason, error) {
	reasons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reasons")
	}
	return reasons, nil
}

func (s *service) Add(ctx context.Context, code, label string) (*models.Reason, error) {
	code = strings.TrimSpace(code)
	label = strings.TrimSpace(label)
	if !codePattern.MatchString(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code must be a lowercase slug")
	}
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}

	reason := &models.Reason{Code: code, Label: label}
	if err := s.repo.Create(ctx, reason); err != nil {
		if db.IsUniqueViolation(err, "reasons_pkey") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("reason %q already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reason")
	}
	return reason, nil
}

func (s *service) Remove(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	rows, err := s.repo.Delete(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reason")
	}
	if rows > 0 {
		return nil
	}

	// Nothing deleted: either the code is unknown or it names a seeded reason.
	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("reason %q is seeded and cannot be removed", code))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reason")
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("reason %q not found", code))
}
