package model

import (
	"strings"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

type Questionnaire struct {
	ID               int        `json:"id,omitempty"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category,omitempty"`
	ThemeID          int        `json:"themeId,omitempty"`
	Status           string     `json:"status,omitempty"`
	SerialNumber     string     `json:"serialNumber,omitempty"`
	TargetResponses  int        `json:"targetResponses,omitempty"`
	CurrentResponses int        `json:"currentResponses,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks the fields the backend cannot do without.
func (q Questionnaire) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return ValidationError{Field: "name", Msg: "questionnaire name is required"}
	}
	return nil
}

type Sample struct {
	ID              int           `json:"id,omitempty"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	QuestionnaireID int           `json:"questionnaireId,omitempty"`
	TargetSize      int           `json:"targetSize,omitempty"`
	Status          string        `json:"status,omitempty"`
	Filters         SampleFilters `json:"filters"`
	CreatedAt       *time.Time    `json:"createdAt,omitempty"`
}

type SampleFilters struct {
	Provinces     []string `json:"provinces,omitempty"`
	FarmTypes     []string `json:"farmTypes,omitempty"`
	EconomicSizes []string `json:"economicSizes,omitempty"`
}

func (s Sample) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ValidationError{Field: "name", Msg: "sample name is required"}
	}
	if s.TargetSize < 0 {
		return ValidationError{Field: "targetSize", Msg: "target size cannot be negative"}
	}
	return nil
}

type SampleGroup struct {
	ID            int    `json:"id,omitempty"`
	SampleID      int    `json:"sampleId"`
	Name          string `json:"name"`
	InterviewerID int    `json:"interviewerId,omitempty"`
	TargetSize    int    `json:"targetSize,omitempty"`
	FarmIDs       []int  `json:"farmIds,omitempty"`
}

func (g SampleGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ValidationError{Field: "name", Msg: "group name is required"}
	}
	if g.SampleID == 0 {
		return ValidationError{Field: "sampleId", Msg: "group must belong to a sample"}
	}
	return nil
}

type Farm struct {
	ID           int     `json:"id"`
	Code         string  `json:"code,omitempty"`
	Name         string  `json:"name"`
	Owner        string  `json:"owner,omitempty"`
	Province     string  `json:"province,omitempty"`
	District     string  `json:"district,omitempty"`
	Community    string  `json:"community,omitempty"`
	FarmType     string  `json:"farmType,omitempty"`
	EconomicSize string  `json:"economicSize,omitempty"`
	Area         float64 `json:"area,omitempty"`
}

type Quota struct {
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Region    string `json:"region,omitempty"`
	SampleID  int    `json:"sampleId,omitempty"`
	Target    int    `json:"target"`
	Allocated int    `json:"allocated"`
	Completed int    `json:"completed"`
}

type QuotaSummary struct {
	TotalTarget    int     `json:"totalTarget"`
	TotalAllocated int     `json:"totalAllocated"`
	TotalCompleted int     `json:"totalCompleted"`
	Quotas         []Quota `json:"quotas"`
}

// Participant is a farm (or person) eligible for interviewing. Score is
// computed by the backend and only displayed.
type Participant struct {
	ID       int     `json:"id"`
	FarmID   int     `json:"farmId,omitempty"`
	SampleID int     `json:"sampleId,omitempty"`
	Name     string  `json:"name"`
	Province string  `json:"province,omitempty"`
	Status   string  `json:"status,omitempty"`
	Score    float64 `json:"score,omitempty"`
	QuotaID  int     `json:"quotaId,omitempty"`
}

type AllocationRequest struct {
	ParticipantID int `json:"participantId"`
	QuotaID       int `json:"quotaId"`
}

type AutoAllocationRequest struct {
	SampleID int   `json:"sampleId,omitempty"`
	QuotaIDs []int `json:"quotaIds,omitempty"`
}

type AutoAllocationResult struct {
	Allocated int           `json:"allocated"`
	Message   string        `json:"message,omitempty"`
	Matches   []Participant `json:"matches,omitempty"`
}

type AssignFarmsRequest struct {
	FarmIDs []int `json:"farmIds"`
}

type InterviewerRequest struct {
	InterviewerID int `json:"interviewerId"`
}

type GenerateParticipantsRequest struct {
	Size int `json:"size,omitempty"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Theme struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (t Theme) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ValidationError{Field: "name", Msg: "theme name is required"}
	}
	return nil
}

type Location struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name"`
	Community  string `json:"community"`
	District   string `json:"district"`
	Population int    `json:"population"`
	Farmers    int    `json:"farmers"`
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ValidationError{Field: "name", Msg: "location name is required"}
	}
	return nil
}

// Submission is one captured set of answers to a questionnaire form.
type Submission struct {
	ID              int            `json:"id,omitempty"`
	QuestionnaireID int            `json:"questionnaireId"`
	Time            time.Time      `json:"time"`
	Values          map[string]any `json:"values"`
}

type Health struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Page is the normalized shape of every list returned by the backend.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return e.Msg
}
