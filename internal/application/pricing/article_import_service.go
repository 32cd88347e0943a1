package pricing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	csvimport "github.com/freightpro/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

// ArticleImportResult summarizes one article catalog import run
type ArticleImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
}

// ArticleImportService bulk-loads the article catalog from CSV files.
// Rows are validated as a batch before anything is written; a file with
// validation errors imports nothing.
type ArticleImportService struct {
	articleRepo pricing.ArticleRepository
}

// NewArticleImportService creates a new ArticleImportService
func NewArticleImportService(articleRepo pricing.ArticleRepository) *ArticleImportService {
	return &ArticleImportService{articleRepo: articleRepo}
}

// ValidationRules returns the field rules for the article CSV layout
func (s *ArticleImportService) ValidationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("code").Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		csvimport.Field("unit").Required().String().MinLength(1).MaxLength(20).Build(),
		csvimport.Field("base_rate").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("basis").Required().Custom(validateRateBasis).Build(),
	}
}

func validateRateBasis(value string) error {
	if !pricing.RateBasis(value).IsValid() {
		return fmt.Errorf("basis must be '%s' or '%s'",
			pricing.RateBasisPerWeight, pricing.RateBasisPerUnit)
	}
	return nil
}

// ImportCSV validates the CSV stream against the article rules and, when the
// whole file is clean, creates one catalog article per row. Codes already
// present in the organization's catalog are reported as duplicates during
// validation, not silently skipped.
func (s *ArticleImportService) ImportCSV(ctx context.Context, scope shared.Scope, fileName string, fileSize int64, r io.Reader) (*ArticleImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	session := csvimport.NewImportSession(scope.OrgID, scope.UserID, csvimport.EntityArticles, fileName, fileSize)

	processor := csvimport.NewImportProcessor(
		csvimport.WithUniqueLookup(func(entityType, field, value string) (bool, error) {
			if field != "code" {
				return false, nil
			}
			existing, lookupErr := s.articleRepo.FindByCodeForScope(ctx, scope, value)
			if lookupErr != nil {
				if errors.Is(lookupErr, shared.ErrNotFound) {
					return false, nil
				}
				return false, lookupErr
			}
			return existing != nil, nil
		}),
	)

	vr, err := processor.Validate(ctx, session, bytes.NewReader(data), s.ValidationRules())
	if err != nil {
		return nil, shared.NewDomainError("IMPORT_FAILED", fmt.Sprintf("Could not parse CSV file: %v", err))
	}

	result := &ArticleImportResult{
		TotalRows: vr.TotalRows,
		ErrorRows: vr.ErrorRows,
		Errors:    vr.Errors,
	}
	if vr.ErrorRows > 0 {
		return result, nil
	}

	// The validation pass consumed the reader; parse again for the rows.
	// With zero error rows every non-empty row is importable.
	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, shared.NewDomainError("IMPORT_FAILED", fmt.Sprintf("Could not parse CSV file: %v", err))
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("IMPORT_FAILED", fmt.Sprintf("Could not parse CSV header: %v", err))
	}

	session.UpdateState(csvimport.StateImporting)
	for {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, shared.NewDomainError("IMPORT_FAILED", fmt.Sprintf("Could not read row: %v", err))
		}
		if row.IsEmpty() {
			continue
		}

		if err := s.importRow(ctx, scope, row, result); err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
	}

	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}
	return result, nil
}

func (s *ArticleImportService) importRow(ctx context.Context, scope shared.Scope, row *csvimport.Row, result *ArticleImportResult) error {
	rate, err := decimal.NewFromString(row.Get("base_rate"))
	if err != nil {
		result.ErrorRows++
		result.Errors = append(result.Errors, csvimport.NewRowError(
			row.LineNumber, "base_rate", csvimport.ErrCodeImportInvalidType, err.Error()))
		return nil
	}

	article, err := pricing.NewArticle(scope.OrgID,
		row.Get("name"), row.Get("code"), row.Get("unit"),
		rate, pricing.RateBasis(row.Get("basis")))
	if err != nil {
		result.ErrorRows++
		result.Errors = append(result.Errors, csvimport.NewRowError(
			row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		return nil
	}
	article.SetCreatedBy(scope.UserID)

	if err := s.articleRepo.Save(ctx, article); err != nil {
		return fmt.Errorf("failed to save imported article at row %d: %w", row.LineNumber, err)
	}
	result.ImportedRows++
	return nil
}
