package service

import (
	"context"
	"time"

	"lucosms-backend/internal/model"
	"lucosms-backend/internal/phone"

	"go.uber.org/zap"
)

// NumberExtractor cleans a whole batch of candidates in one call and returns the
// canonical numbers it found. Implementations live in internal/extractor.
type NumberExtractor interface {
	ExtractCandidateNumbers(ctx context.Context, candidates []string) ([]string, error)
}

// ProgressFunc receives the counters when they change. It may be nil.
type ProgressFunc func(model.ImportProgress)

// Reconciler turns a raw candidate batch into net-new contacts. It never mutates
// the contact set it is given.
type Reconciler struct {
	extractor NumberExtractor
	logger    *zap.Logger
	now       func() time.Time
}

func NewReconciler(extractor NumberExtractor, logger *zap.Logger) *Reconciler {
	return &Reconciler{extractor: extractor, logger: logger, now: time.Now}
}

func (r *Reconciler) Reconcile(ctx context.Context, candidates []string, existing *model.ContactSet, report ProgressFunc) (*model.ImportResult, error) {
	if report == nil {
		report = func(model.ImportProgress) {}
	}

	filtered := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if phone.HasDigit(c) {
			filtered = append(filtered, c)
		}
	}

	result := &model.ImportResult{
		Progress:    model.ImportProgress{Total: len(filtered)},
		NewContacts: []model.Contact{},
	}
	report(result.Progress)

	if len(filtered) == 0 {
		return result, nil
	}

	numbers, err := r.extractor.ExtractCandidateNumbers(ctx, filtered)
	if err != nil {
		r.logger.Warn("Number extraction failed",
			zap.Int("candidates", len(filtered)),
			zap.Error(err),
		)
		return nil, &ImportError{Op: OpValidation, Err: err}
	}

	seen := make(map[string]struct{}, len(numbers))
	now := r.now()
	for _, n := range numbers {
		if !phone.IsCanonical(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		if existing != nil && existing.Has(n) {
			continue
		}
		c := model.NewContact(model.ImportedContactName, n, now)
		result.NewContacts = append(result.NewContacts, c)
	}

	result.Progress.Processed = result.Progress.Total
	result.Progress.Valid = len(seen)
	report(result.Progress)

	r.logger.Debug("Reconciled import batch",
		zap.Int("total", result.Progress.Total),
		zap.Int("valid", result.Progress.Valid),
		zap.Int("new", len(result.NewContacts)),
	)
	return result, nil
}
