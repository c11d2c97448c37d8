package models

// RegisterCandidateRequest is the public application form payload.
type RegisterCandidateRequest struct {
	Name            string           `json:"name" binding:"required"`
	Email           string           `json:"email" binding:"required,email"`
	PersonalEmail   *string          `json:"personal_email" binding:"omitempty,email"`
	Phone           string           `json:"phone" binding:"required"`
	Year            int              `json:"year" binding:"required,gte=1,lte=5"`
	LibraryID       string           `json:"library_id" binding:"required"`
	Branch          string           `json:"branch" binding:"required"`
	Gender          *string          `json:"gender" binding:"omitempty,oneof=Male Female"`
	Course          *string          `json:"course" binding:"omitempty,oneof=B-Tech B-Pharma MBA MCA"`
	WhyECell        string           `json:"why_ecell" binding:"required"`
	WhatMotivates   *string          `json:"what_motivates"`
	LinkedIn        *string          `json:"linkedin"`
	Domains         []string         `json:"domains" binding:"required,min=1"`
	DomainPrefOne   DomainPreference `json:"domain_pref_one" binding:"required"`
	DomainPrefTwo   DomainPreference `json:"domain_pref_two" binding:"required"`
	IsHosteller     bool             `json:"is_hosteller"`
	PastAchievement *string          `json:"past_achievement"`
}

// RoundUpdateRequest patches one round's state for a candidate. Domains may
// accompany a screening update to record the panel's final domain call.
type RoundUpdateRequest struct {
	Status   *RoundStatus `json:"status" binding:"omitempty,oneof=scheduled pending selected rejected unsure absent"`
	Datetime *string      `json:"datetime"`
	Remarks  *Remarks     `json:"remarks"`
	Domains  []string     `json:"domains"`
}

// AttendanceRequest flips the presence flag for a candidate.
type AttendanceRequest struct {
	IsPresent bool `json:"is_present"`
}

// SlotAssignmentRequest assigns one interview slot label to many candidates.
type SlotAssignmentRequest struct {
	Emails []string `json:"emails" binding:"required,min=1"`
	Slot   string   `json:"slot" binding:"required"`
}

// SlotAssignmentResult summarises a bulk slot assignment.
type SlotAssignmentResult struct {
	Updated []string          `json:"updated"`
	Failed  []ScheduleFailure `json:"failed"`
	Slot    string            `json:"slot"`
}

// ShortlistRequest toggles the shortlist flag for a candidate.
type ShortlistRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Shortlisted bool   `json:"shortlisted"`
}

// TaskSubmissionRequest marks one domain task as completed with its
// submission URL.
type TaskSubmissionRequest struct {
	Domain string `json:"domain" binding:"required"`
	URL    string `json:"url" binding:"required,url"`
}
