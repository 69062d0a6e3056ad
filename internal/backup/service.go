package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exports the full inventory state as a JSON snapshot and restores
// from one. Restore replaces everything; it is not a merge.
type Service interface {
	Export(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, raw []byte) (*RestoreSummary, error)
}

// RestoreSummary reports what a completed restore loaded.
type RestoreSummary struct {
	Items        int
	Locations    int
	StockLevels  int
	Bookings     int
	AuditEntries int
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("backup repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) Export(ctx context.Context) ([]byte, error) {
	state, err := s.repo.Dump(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dump state")
	}

	raw, err := json.MarshalIndent(snapshotFromState(state, s.now()), "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "encode snapshot")
	}
	return raw, nil
}

func (s *service) Restore(ctx context.Context, raw []byte) (*RestoreSummary, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode snapshot")
	}
	if snap.Version != snapshotVersion {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported snapshot version %d", snap.Version))
	}

	state, err := stateFromSnapshot(&snap)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid snapshot")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Replace(ctx, state)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}

	return &RestoreSummary{
		Items:        len(state.Items),
		Locations:    len(state.Locations),
		StockLevels:  len(state.Levels),
		Bookings:     len(state.Bookings),
		AuditEntries: len(state.AuditTrail),
	}, nil
}
