package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type exportDirectory interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error)
	FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error)
}

// ExportResult carries rendered bytes with their transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders candidate schedule sheets as CSV or PDF.
type ExportService struct {
	directory exportDirectory
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(directory exportDirectory, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		directory: directory,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// ExportCandidates renders all candidates, or one group when groupNumber is
// positive, in the requested format.
func (s *ExportService) ExportCandidates(ctx context.Context, format string, groupNumber int) (*ExportResult, error) {
	format = strings.ToLower(format)
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	var candidates []models.Candidate
	var err error
	if groupNumber > 0 {
		candidates, err = s.directory.FindByGroup(ctx, groupNumber)
	} else {
		candidates, _, err = s.directory.List(ctx, models.CandidateFilter{PageSize: 500})
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates for export")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no candidates to export")
	}

	dataset := scheduleDataset(candidates)

	name := "candidates"
	title := "Recruitment Schedule"
	if groupNumber > 0 {
		name = fmt.Sprintf("group-%d", groupNumber)
		title = fmt.Sprintf("Recruitment Schedule - Group %d", groupNumber)
	}

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: name + ".csv"}, nil
	default:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: name + ".pdf"}, nil
	}
}

func scheduleDataset(candidates []models.Candidate) export.Dataset {
	headers := []string{"Name", "Email", "Group", "GD", "Screening", "Interview", "Slot", "Shortlisted"}
	rows := make([]map[string]string, 0, len(candidates))
	for _, c := range candidates {
		group := ""
		if c.GroupNumber != nil {
			group = strconv.Itoa(*c.GroupNumber)
		}
		slot := ""
		if c.AssignedSlot != nil {
			slot = *c.AssignedSlot
		}
		rows = append(rows, map[string]string{
			"Name":        c.Name,
			"Email":       c.Email,
			"Group":       group,
			"GD":          formatRoundTime(c.GD),
			"Screening":   formatRoundTime(c.Screening),
			"Interview":   formatRoundTime(c.PI),
			"Slot":        slot,
			"Shortlisted": strconv.FormatBool(c.Shortlisted),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatRoundTime(state models.RoundState) string {
	if state.Datetime == nil {
		return ""
	}
	return state.Datetime.Format("2006-01-02 15:04")
}
