package models

import "time"

// Batch is a run-local grouping of candidates that share one group number
// and one three-stage schedule. Batches are never persisted; they are fully
// derivable from the candidate mutations they produce.
type Batch struct {
	BatchNumber int
	GroupNumber int
	Candidates  []Candidate
	Date        time.Time
	GDStart     time.Time
	Screening   time.Time
	Interview   time.Time
}

// BatchResult reports one scheduled batch in the run summary.
type BatchResult struct {
	BatchNumber   int      `json:"batchNumber"`
	GroupNumber   int      `json:"groupNumber"`
	Users         []string `json:"users"`
	GDTime        string   `json:"gdTime"`
	ScreeningTime string   `json:"screeningTime"`
	InterviewTime string   `json:"interviewTime"`
	Date          string   `json:"date"`
}

// ScheduleFailure records one candidate that could not be scheduled.
type ScheduleFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// ScheduleRunResult is the full outcome of one bulk scheduling call.
type ScheduleRunResult struct {
	TotalUsersScheduled int               `json:"totalUsersScheduled"`
	TotalBatches        int               `json:"totalBatches"`
	Batches             []BatchResult     `json:"batches"`
	Failed              []ScheduleFailure `json:"failed"`
}

// BulkRoundsRequest is the entry payload for the bulk interview-round
// scheduler.
type BulkRoundsRequest struct {
	Emails        []string `json:"emails" binding:"required,min=1"`
	BatchSize     int      `json:"batchSize" binding:"required,gt=0"`
	StartDate     string   `json:"startDate" binding:"required"`
	StartTime     string   `json:"startTime" binding:"required"`
	EndTime       string   `json:"endTime" binding:"required"`
	RoundDuration int      `json:"roundDuration" binding:"required,gt=0"`
}

// MoveGroupRequest moves candidates into an existing group, copying that
// group's schedule.
type MoveGroupRequest struct {
	Emails            []string `json:"emails" binding:"required,min=1"`
	TargetGroupNumber int      `json:"targetGroupNumber" binding:"required,gt=0"`
}

// MoveGroupResult summarises a group move.
type MoveGroupResult struct {
	Updated           []string          `json:"updated"`
	Failed            []ScheduleFailure `json:"failed"`
	TargetGroupNumber int               `json:"targetGroupNumber"`
	GDTime            *time.Time        `json:"gdTime,omitempty"`
	ScreeningTime     *time.Time        `json:"screeningTime,omitempty"`
	PITime            *time.Time        `json:"piTime,omitempty"`
}
