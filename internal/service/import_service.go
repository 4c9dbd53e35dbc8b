package service

import (
	"context"
	"errors"
	"time"

	"lucosms-backend/internal/lock"
	"lucosms-backend/internal/model"
	"lucosms-backend/internal/spreadsheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Events pushed to import watchers.
const (
	EventImportProgress  = "import_progress"
	EventImportCompleted = "import_completed"
	EventImportFailed    = "import_failed"
)

const importLockKey = "contacts-import"

// ProgressPublisher pushes import events to whoever watches an import id.
type ProgressPublisher interface {
	Publish(importID, eventType string, data interface{})
}

type ImportRequest struct {
	// ID lets a client subscribe to progress before uploading. Generated when empty.
	ID       string
	FileName string
	Data     []byte
	// DryRun reconciles without merging.
	DryRun bool
}

type ImportFailure struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

type ImportService struct {
	Contacts   *ContactService
	Reconciler *Reconciler
	Locker     lock.Locker
	Publisher  ProgressPublisher
	logger     *zap.Logger
}

func NewImportService(contacts *ContactService, reconciler *Reconciler, locker lock.Locker, publisher ProgressPublisher, logger *zap.Logger) *ImportService {
	return &ImportService{
		Contacts:   contacts,
		Reconciler: reconciler,
		Locker:     locker,
		Publisher:  publisher,
		logger:     logger,
	}
}

// Import runs one spreadsheet import. Only one import runs at a time; a second one
// gets ErrImportInProgress. Failures come back as a single *ImportError and leave
// the contact store untouched.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*model.ImportResult, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := s.logger.With(zap.String("import_id", id), zap.String("file_name", req.FileName))

	unlock, err := s.Locker.TryLock(ctx, importLockKey)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, ErrImportInProgress
		}
		return nil, err
	}
	defer unlock()

	start := time.Now()
	result, err := s.run(ctx, id, req)
	if err != nil {
		logger.Warn("Import failed", zap.Error(err))
		var ie *ImportError
		if errors.As(err, &ie) {
			s.publish(id, EventImportFailed, ImportFailure{Op: ie.Op, Message: err.Error()})
		}
		return nil, err
	}

	s.publish(id, EventImportCompleted, result)
	logger.Info("Import finished",
		zap.Int("total", result.Progress.Total),
		zap.Int("valid", result.Progress.Valid),
		zap.Int("duplicates", result.Duplicates()),
		zap.Int("imported", result.Imported),
		zap.Bool("dry_run", req.DryRun),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *ImportService) run(ctx context.Context, id string, req ImportRequest) (*model.ImportResult, error) {
	rows, err := spreadsheet.Parse(req.FileName, req.Data)
	if err != nil {
		return nil, &ImportError{Op: OpRead, Err: err}
	}

	existing, err := s.Contacts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := func(p model.ImportProgress) {
		s.publish(id, EventImportProgress, p)
	}
	result, err := s.Reconciler.Reconcile(ctx, spreadsheet.Candidates(rows), existing, report)
	if err != nil {
		return nil, err
	}
	result.ID = id
	result.FileName = req.FileName

	if req.DryRun {
		return result, nil
	}

	added, err := s.Contacts.Merge(ctx, result.NewContacts)
	if err != nil {
		return nil, &ImportError{Op: OpMerge, Err: err}
	}
	result.Imported = len(added)
	return result, nil
}

func (s *ImportService) publish(id, eventType string, data interface{}) {
	if s.Publisher != nil {
		s.Publisher.Publish(id, eventType, data)
	}
}
