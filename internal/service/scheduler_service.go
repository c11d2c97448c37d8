package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
)

type schedulerDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error)
	MaxGroupNumber(ctx context.Context) (int, error)
	UpdateRounds(ctx context.Context, candidate *models.Candidate) error
}

// OrderCandidates reorders found candidates before they are partitioned into
// batches. Production injects a shuffle for fair batch composition; tests
// inject the identity order.
type OrderCandidates func([]models.Candidate)

// IdentityOrder keeps the lookup order.
func IdentityOrder([]models.Candidate) {}

// ShuffleOrder randomises candidate order with the given source.
func ShuffleOrder(rng *rand.Rand) OrderCandidates {
	return func(candidates []models.Candidate) {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}
}

// SchedulerService computes conflict-free pipelined round schedules and
// stamps them onto candidate records.
type SchedulerService struct {
	directory schedulerDirectory
	order     OrderCandidates
	restDay   time.Weekday
	logger    *zap.Logger
}

// NewSchedulerService wires the scheduler. A nil order falls back to the
// identity order.
func NewSchedulerService(directory schedulerDirectory, order OrderCandidates, restDay time.Weekday, logger *zap.Logger) *SchedulerService {
	if order == nil {
		order = IdentityOrder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{directory: directory, order: order, restDay: restDay, logger: logger}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// stageCount is the number of pipelined stages per batch: GD, screening, PI.
const stageCount = 3

// ScheduleRounds partitions the requested candidates into batches, computes
// a pipelined three-stage schedule packed into the working-day window, and
// persists group number plus round state for every candidate found.
//
// Group numbers continue from the current maximum across all candidates,
// read once at the start of the run. Two concurrent runs can therefore
// assign overlapping group numbers; callers must serialise runs if that
// matters to them.
func (s *SchedulerService) ScheduleRounds(ctx context.Context, req models.BulkRoundsRequest) (*models.ScheduleRunResult, error) {
	if req.BatchSize <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batchSize must be positive")
	}
	if req.RoundDuration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roundDuration must be positive")
	}

	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate must be YYYY-MM-DD")
	}
	startMinutes, err := parseMinutesOfDay(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startTime must be HH:MM")
	}
	endMinutes, err := parseMinutesOfDay(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "endTime must be HH:MM")
	}
	if endMinutes <= startMinutes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}

	windowMinutes := endMinutes - startMinutes
	if windowMinutes < stageCount*req.RoundDuration {
		return nil, appErrors.Clone(appErrors.ErrWindowTooSmall,
			fmt.Sprintf("day window of %d minutes cannot fit one batch (%d minutes needed)", windowMinutes, stageCount*req.RoundDuration))
	}

	result := &models.ScheduleRunResult{Batches: []models.BatchResult{}, Failed: []models.ScheduleFailure{}}

	var candidates []models.Candidate
	for _, email := range req.Emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		candidate, err := s.directory.FindByEmail(ctx, normalized)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Failed = append(result.Failed, models.ScheduleFailure{Email: normalized, Reason: "candidate not found"})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up candidate")
		}
		candidates = append(candidates, *candidate)
	}

	if len(candidates) == 0 {
		return result, nil
	}

	s.order(candidates)

	lastGroup, err := s.directory.MaxGroupNumber(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read current group number")
	}

	batches := partitionCandidates(candidates, req.BatchSize)
	result.TotalBatches = len(batches)

	// Fast-path estimate of how many pipelined batches fit in a day. The
	// per-batch end-of-window check below stays authoritative.
	maxBatchesPerDay := (windowMinutes-2*req.RoundDuration)/req.RoundDuration + 1
	if maxBatchesPerDay < 1 {
		maxBatchesPerDay = 1
	}

	currentDate := s.skipRestDays(startDate)
	scheduledToday := 0

	for i, batchCandidates := range batches {
		if scheduledToday >= maxBatchesPerDay {
			currentDate = s.skipRestDays(currentDate.AddDate(0, 0, 1))
			scheduledToday = 0
		}

		gdMinutes := startMinutes + scheduledToday*req.RoundDuration
		if gdMinutes+stageCount*req.RoundDuration > endMinutes {
			currentDate = s.skipRestDays(currentDate.AddDate(0, 0, 1))
			scheduledToday = 0
			gdMinutes = startMinutes
		}

		batch := models.Batch{
			BatchNumber: i + 1,
			GroupNumber: lastGroup + i + 1,
			Candidates:  batchCandidates,
			Date:        currentDate,
			GDStart:     atMinutes(currentDate, gdMinutes),
		}
		batch.Screening = batch.GDStart.Add(time.Duration(req.RoundDuration) * time.Minute)
		batch.Interview = batch.Screening.Add(time.Duration(req.RoundDuration) * time.Minute)

		scheduled, failed := s.writeBatch(ctx, &batch)
		result.TotalUsersScheduled += len(scheduled)
		result.Failed = append(result.Failed, failed...)

		result.Batches = append(result.Batches, models.BatchResult{
			BatchNumber:   batch.BatchNumber,
			GroupNumber:   batch.GroupNumber,
			Users:         scheduled,
			GDTime:        batch.GDStart.Format(timeLayout),
			ScreeningTime: batch.Screening.Format(timeLayout),
			InterviewTime: batch.Interview.Format(timeLayout),
			Date:          currentDate.Format(dateLayout),
		})

		scheduledToday++
	}

	s.logger.Info("bulk rounds scheduled",
		zap.Int("batches", result.TotalBatches),
		zap.Int("scheduled", result.TotalUsersScheduled),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// writeBatch stamps group number and round states onto every candidate in
// the batch and persists them one at a time. A failed write is reported and
// does not stop the remaining candidates.
func (s *SchedulerService) writeBatch(ctx context.Context, batch *models.Batch) (scheduled []string, failed []models.ScheduleFailure) {
	label := fmt.Sprintf("Batch %d - Group %d", batch.BatchNumber, batch.GroupNumber)

	for i := range batch.Candidates {
		candidate := &batch.Candidates[i]
		group := batch.GroupNumber
		candidate.GroupNumber = &group

		gd := batch.GDStart
		screening := batch.Screening
		interview := batch.Interview
		candidate.GD = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &gd, Remarks: models.TextRemarks(label)}
		candidate.Screening = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &screening, Remarks: models.TextRemarks(label)}
		// PI remarks keep the stored list shape.
		candidate.PI = models.RoundState{Status: models.RoundStatusScheduled, Datetime: &interview, Remarks: models.ListRemarks(label)}

		if err := s.directory.UpdateRounds(ctx, candidate); err != nil {
			s.logger.Warn("failed to persist round state", zap.String("email", candidate.Email), zap.Error(err))
			failed = append(failed, models.ScheduleFailure{Email: candidate.Email, Reason: err.Error()})
			continue
		}
		scheduled = append(scheduled, candidate.Email)
	}

	return scheduled, failed
}

// MoveToGroup reassigns candidates to an existing group, copying that
// group's round schedule from a reference member.
func (s *SchedulerService) MoveToGroup(ctx context.Context, req models.MoveGroupRequest) (*models.MoveGroupResult, error) {
	members, err := s.directory.FindByGroup(ctx, req.TargetGroupNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target group")
	}
	if len(members) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("target group %d does not exist", req.TargetGroupNumber))
	}

	reference := members[0]
	if reference.GD.Datetime == nil || reference.Screening.Datetime == nil || reference.PI.Datetime == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("target group %d has incomplete scheduling information", req.TargetGroupNumber))
	}

	label := reference.GD.Remarks.Text()

	result := &models.MoveGroupResult{
		Updated:           []string{},
		Failed:            []models.ScheduleFailure{},
		TargetGroupNumber: req.TargetGroupNumber,
		GDTime:            reference.GD.Datetime,
		ScreeningTime:     reference.Screening.Datetime,
		PITime:            reference.PI.Datetime,
	}

	for _, email := range req.Emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		candidate, err := s.directory.FindByEmail(ctx, normalized)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Failed = append(result.Failed, models.ScheduleFailure{Email: normalized, Reason: "candidate not found"})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up candidate")
		}

		group := req.TargetGroupNumber
		candidate.GroupNumber = &group
		candidate.GD = models.RoundState{Status: statusOrScheduled(candidate.GD), Datetime: reference.GD.Datetime, Remarks: models.TextRemarks(label)}
		candidate.Screening = models.RoundState{Status: statusOrScheduled(candidate.Screening), Datetime: reference.Screening.Datetime, Remarks: models.TextRemarks(label)}
		candidate.PI = models.RoundState{Status: statusOrScheduled(candidate.PI), Datetime: reference.PI.Datetime, Remarks: models.ListRemarks(label)}

		if err := s.directory.UpdateRounds(ctx, candidate); err != nil {
			result.Failed = append(result.Failed, models.ScheduleFailure{Email: normalized, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, normalized)
	}

	return result, nil
}

// partitionCandidates splits candidates into ordered batches of at most
// size, preserving input order.
func partitionCandidates(candidates []models.Candidate, size int) [][]models.Candidate {
	var batches [][]models.Candidate
	for start := 0; start < len(candidates); start += size {
		end := start + size
		if end > len(candidates) {
			end = len(candidates)
		}
		batches = append(batches, candidates[start:end])
	}
	return batches
}

// skipRestDays advances the date until it no longer falls on the rest day.
func (s *SchedulerService) skipRestDays(d time.Time) time.Time {
	for d.Weekday() == s.restDay {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func parseMinutesOfDay(raw string) (int, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func atMinutes(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

func statusOrScheduled(state models.RoundState) models.RoundStatus {
	if state.Status == "" {
		return models.RoundStatusScheduled
	}
	return state.Status
}
