package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// RoundStatus enumerates the lifecycle of a recruitment round.
type RoundStatus string

const (
	RoundStatusScheduled RoundStatus = "scheduled"
	RoundStatusPending   RoundStatus = "pending"
	RoundStatusSelected  RoundStatus = "selected"
	RoundStatusRejected  RoundStatus = "rejected"
	RoundStatusUnsure    RoundStatus = "unsure"
	RoundStatusAbsent    RoundStatus = "absent"
)

// Gender options accepted on the application form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Courses accepted on the application form.
const (
	CourseBTech   = "B-Tech"
	CourseBPharma = "B-Pharma"
	CourseMBA     = "MBA"
	CourseMCA     = "MCA"
)

// Remarks is a tagged union: screening and GD rounds store a bare string,
// the interview round stores a list of strings. The asymmetry matches the
// stored document shape and must not be collapsed.
type Remarks struct {
	text   string
	list   []string
	isList bool
}

// TextRemarks builds a bare-string remark.
func TextRemarks(s string) Remarks {
	return Remarks{text: s}
}

// ListRemarks builds a list-shaped remark.
func ListRemarks(items ...string) Remarks {
	return Remarks{list: items, isList: true}
}

// IsList reports whether the remark carries the list shape.
func (r Remarks) IsList() bool { return r.isList }

// Text returns the bare-string value, or the first list entry.
func (r Remarks) Text() string {
	if r.isList {
		if len(r.list) == 0 {
			return ""
		}
		return r.list[0]
	}
	return r.text
}

// List returns the list value, wrapping a bare string when needed.
func (r Remarks) List() []string {
	if r.isList {
		return r.list
	}
	if r.text == "" {
		return nil
	}
	return []string{r.text}
}

// MarshalJSON emits either a JSON string or a JSON array.
func (r Remarks) MarshalJSON() ([]byte, error) {
	if r.isList {
		if r.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(r.list)
	}
	return json.Marshal(r.text)
}

// UnmarshalJSON accepts both shapes.
func (r *Remarks) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Remarks{text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("remarks must be a string or a string list")
	}
	*r = Remarks{list: list, isList: true}
	return nil
}

// RoundState captures a candidate's standing in one recruitment round,
// persisted as JSONB.
type RoundState struct {
	Status   RoundStatus `json:"status,omitempty"`
	Datetime *time.Time  `json:"datetime,omitempty"`
	Remarks  Remarks     `json:"remarks,omitempty"`
}

// IsZero reports whether the round has never been touched.
func (s RoundState) IsZero() bool {
	return s.Status == "" && s.Datetime == nil
}

// Value marshals the round state to JSON for persistence.
func (s RoundState) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal round state: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the round state.
func (s *RoundState) Scan(value interface{}) error {
	if value == nil {
		*s = RoundState{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for RoundState", value)
	}
	if len(data) == 0 {
		*s = RoundState{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// DomainPreference is a ranked domain choice with the applicant's reasoning.
type DomainPreference struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Value marshals the preference to JSON for persistence.
func (p DomainPreference) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal domain preference: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the preference.
func (p *DomainPreference) Scan(value interface{}) error {
	if value == nil {
		*p = DomainPreference{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DomainPreference", value)
	}
	if len(data) == 0 {
		*p = DomainPreference{}
		return nil
	}
	return json.Unmarshal(data, p)
}

// TaskItem is one per-domain assignment handed to a shortlisted candidate.
type TaskItem struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Task statuses for shortlist assignments.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// TaskState aggregates all shortlist assignments for a candidate, persisted
// as JSONB.
type TaskState struct {
	Status string     `json:"status,omitempty"`
	Tasks  []TaskItem `json:"tasks,omitempty"`
}

// Value marshals the task state to JSON for persistence.
func (t TaskState) Value() (driver.Value, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal task state: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the task state.
func (t *TaskState) Scan(value interface{}) error {
	if value == nil {
		*t = TaskState{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for TaskState", value)
	}
	if len(data) == 0 {
		*t = TaskState{}
		return nil
	}
	return json.Unmarshal(data, t)
}

// CandidateFilter captures filtering criteria for listing candidates.
type CandidateFilter struct {
	Shortlisted *bool
	Year        *int
	Search      string
	Page        int
	PageSize    int
}

// Candidate represents an applicant stored in the candidates table.
type Candidate struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Email           string           `db:"email" json:"email"`
	PersonalEmail   *string          `db:"personal_email" json:"personal_email,omitempty"`
	Phone           string           `db:"phone" json:"phone"`
	Year            int              `db:"year" json:"year"`
	LibraryID       string           `db:"library_id" json:"library_id"`
	Branch          string           `db:"branch" json:"branch"`
	Gender          *string          `db:"gender" json:"gender,omitempty"`
	Course          *string          `db:"course" json:"course,omitempty"`
	WhyECell        string           `db:"why_ecell" json:"why_ecell"`
	WhatMotivates   *string          `db:"what_motivates" json:"what_motivates,omitempty"`
	LinkedIn        *string          `db:"linkedin" json:"linkedin,omitempty"`
	Domains         pq.StringArray   `db:"domains" json:"domains"`
	DomainPrefOne   DomainPreference `db:"domain_pref_one" json:"domain_pref_one"`
	DomainPrefTwo   DomainPreference `db:"domain_pref_two" json:"domain_pref_two"`
	GroupNumber     *int             `db:"group_number" json:"group_number,omitempty"`
	IsPresent       bool             `db:"is_present" json:"is_present"`
	IsHosteller     bool             `db:"is_hosteller" json:"is_hosteller"`
	PastAchievement *string          `db:"past_achievement" json:"past_achievement,omitempty"`
	AssignedSlot    *string          `db:"assigned_slot" json:"assigned_slot,omitempty"`
	Screening       RoundState       `db:"screening" json:"screening"`
	GD              RoundState       `db:"gd" json:"gd"`
	PI              RoundState       `db:"pi" json:"pi"`
	Task            TaskState        `db:"task" json:"task"`
	Shortlisted     bool             `db:"shortlisted" json:"shortlisted"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
