package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/yhlin/memberdir/internal/importer"
	"github.com/yhlin/memberdir/internal/models"
	pkgauth "github.com/yhlin/memberdir/pkg/auth"
	"github.com/yhlin/memberdir/pkg/logger"
)

type ImportRunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) (*models.ImportRun, error)
	ListRecent(ctx context.Context, limit int) ([]*models.ImportRun, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ImportService struct {
	accounts AccountRepository
	runs     ImportRunRepository
	logger   *slog.Logger
}

func NewImportService(accounts AccountRepository, runs ImportRunRepository, log *slog.Logger) *ImportService {
	return &ImportService{
		accounts: accounts,
		runs:     runs,
		logger:   log,
	}
}

// Preview parses an uploaded workbook without touching the store, so the
// caller can show what would be imported and what was dropped.
type Preview struct {
	Candidates []models.ImportCandidate
	Skipped    []importer.SkippedRow
}

func (s *ImportService) Preview(r io.Reader) (*Preview, error) {
	rows, err := importer.ParseWorkbook(r)
	if err != nil {
		return nil, err
	}
	candidates, skipped := importer.ParseRows(rows, s.logger)
	return &Preview{Candidates: candidates, Skipped: skipped}, nil
}

// Run imports candidates one at a time, in order. A failed row is tallied
// and the run moves on; it never aborts the remaining rows.
func (s *ImportService) Run(ctx context.Context, actor string, candidates []models.ImportCandidate) (*models.ImportReport, error) {
	started := time.Now().UTC()
	report := &models.ImportReport{
		Total: len(candidates),
	}

	for i, candidate := range candidates {
		result := models.ImportRowResult{
			Row:     i + 1,
			Account: candidate.Account,
		}

		outcome, message := s.importOne(ctx, candidate)
		result.Outcome = outcome
		result.Message = message

		switch outcome {
		case models.ImportOutcomeSuccess:
			report.SuccessCount++
		case models.ImportOutcomeSkipped:
			report.SkippedCount++
		case models.ImportOutcomeError:
			report.ErrorCount++
		}
		report.Rows = append(report.Rows, result)

		s.logger.Info("import progress",
			"processed", i+1,
			"total", report.Total,
			"account", logger.SanitizedAccount(candidate.Account),
			"outcome", outcome,
		)
	}

	run := &models.ImportRun{
		Actor:        actor,
		TotalRows:    report.Total,
		SuccessCount: report.SuccessCount,
		SkippedCount: report.SkippedCount,
		ErrorCount:   report.ErrorCount,
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if _, err := s.runs.Create(ctx, run); err != nil {
		// The import itself already happened; losing the history row is
		// reported but does not fail the request.
		s.logger.Error("failed to record import run", "error", err)
	}

	s.logger.Info("import finished",
		"total", report.Total,
		"success", report.SuccessCount,
		"skipped", report.SkippedCount,
		"errors", report.ErrorCount,
	)
	return report, nil
}

func (s *ImportService) importOne(ctx context.Context, candidate models.ImportCandidate) (string, string) {
	_, err := s.accounts.GetByAccount(ctx, candidate.Account)
	if err == nil || errors.Is(err, models.ErrMultipleMatches) {
		return models.ImportOutcomeSkipped, "account already exists"
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.ImportOutcomeError, err.Error()
	}

	passwordHash, err := pkgauth.HashPassword(candidate.Password)
	if err != nil {
		return models.ImportOutcomeError, err.Error()
	}

	_, err = s.accounts.Create(ctx, &models.Account{
		Account:      candidate.Account,
		DisplayName:  candidate.DisplayName,
		PasswordHash: passwordHash,
		Phone:        optional(candidate.Phone),
		Address:      optional(candidate.Address),
		Role:         models.RoleUser,
	})
	if err != nil {
		return models.ImportOutcomeError, err.Error()
	}
	return models.ImportOutcomeSuccess, ""
}

// RecentRuns lists the latest import runs for the history panel.
func (s *ImportService) RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	return s.runs.ListRecent(ctx, limit)
}
