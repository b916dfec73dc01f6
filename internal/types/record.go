// Package types defines the shared data structures exchanged between the
// capture pipeline, the relay, and the CLI.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Platform constants for supported job boards.
const (
	PlatformLinkedIn   = "linkedin"
	PlatformIndeed     = "indeed"
	PlatformGlassdoor  = "glassdoor"
	PlatformGreenhouse = "greenhouse"
	PlatformLever      = "lever"
	PlatformUnknown    = "unknown"
)

// LocationType constants.
const (
	LocationRemote = "remote"
	LocationHybrid = "hybrid"
	LocationOnsite = "onsite"
)

// SalaryPeriod constants.
const (
	SalaryPeriodHourly = "hourly"
	SalaryPeriodAnnual = "annual"
)

// EducationLevel constants.
const (
	EducationAssociate = "associate"
	EducationBachelor  = "bachelor"
	EducationMaster    = "master"
	EducationPhD       = "phd"
)

// DataQuality constants.
const (
	QualityGood = "good"
	QualityPoor = "poor"
)

// MinDescriptionLength is the minimum description length for a record to be
// flagged as good quality.
const MinDescriptionLength = 100

// JobPostingRecord is the unit of capture: one structured record per distinct
// job posting observed on a page.
type JobPostingRecord struct {
	PlatformJobID string `json:"platform_job_id"`
	SourceURL     string `json:"source_url"`
	Platform      string `json:"platform"`

	Title        *string `json:"title,omitempty"`
	Company      *string `json:"company,omitempty"`
	Location     *string `json:"location,omitempty"`
	LocationType *string `json:"location_type,omitempty"`
	Description  *string `json:"description,omitempty"`

	Salary       *string  `json:"salary,omitempty"` // raw display text
	SalaryMin    *float64 `json:"salary_min,omitempty"`
	SalaryMax    *float64 `json:"salary_max,omitempty"`
	SalaryPeriod *string  `json:"salary_period,omitempty"`

	EmploymentType  *string `json:"employment_type,omitempty"`
	SeniorityLevel  *string `json:"seniority_level,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	EducationLevel  *string `json:"education_level,omitempty"`

	Skills   []string `json:"skills,omitempty"`
	Benefits []string `json:"benefits,omitempty"`

	ContentHash string    `json:"content_hash,omitempty"`
	DetectedAt  time.Time `json:"detected_at"`
	DataQuality string    `json:"data_quality"`
}

// Viable reports whether the record meets the minimum-viable-data condition
// required for finalization: a platform job id and a title.
func (r *JobPostingRecord) Viable() bool {
	if r == nil {
		return false
	}
	if strings.TrimSpace(r.PlatformJobID) == "" {
		return false
	}
	return r.Title != nil && strings.TrimSpace(*r.Title) != ""
}

// NormalizeSalaryBounds swaps SalaryMin and SalaryMax when extraction yielded
// them reversed, so SalaryMin <= SalaryMax always holds.
func (r *JobPostingRecord) NormalizeSalaryBounds() {
	if r.SalaryMin != nil && r.SalaryMax != nil && *r.SalaryMin > *r.SalaryMax {
		r.SalaryMin, r.SalaryMax = r.SalaryMax, r.SalaryMin
	}
}

// HashContent generates a SHA-256 hex digest of the description text.
// Used for change detection across repeated extractions of the same view.
func HashContent(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// QueueEntry is a JobPostingRecord tagged with the time it entered the
// fallback queue.
type QueueEntry struct {
	Job        JobPostingRecord `json:"job"`
	CapturedAt time.Time        `json:"captured_at"`
}

// RelayMessageType is the envelope type for a capture delivery.
const RelayMessageType = "JOB_DETECTED"

// RelayMessage is the envelope posted to the companion application.
type RelayMessage struct {
	Type string           `json:"type"`
	Job  JobPostingRecord `json:"job"`
}

// Delivery method constants reported in acknowledgments.
const (
	MethodPrimary = "primary"
	MethodLocal   = "local"
)

// RelayAck is the acknowledgment returned for a delivery attempt.
type RelayAck struct {
	Success bool   `json:"success"`
	Method  string `json:"method,omitempty"` // "primary" or "local"
	Reason  string `json:"reason,omitempty"` // set when Success is false
}

// Status is the answer to a status query from the control surface.
type Status struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// StrPtr returns a pointer to s, or nil when s is empty after trimming.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
