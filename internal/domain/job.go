package domain

import "time"

// JobStatus is the upstream publication state of a job posting.
type JobStatus string

const (
	JobStatusDraft     JobStatus = "Draft"
	JobStatusPublished JobStatus = "Published"
	JobStatusClosed    JobStatus = "Closed"
)

// Company is the employer block on a job posting.
type Company struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Salary is the compensation block on a job posting.
type Salary struct {
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
	Period   string `json:"period,omitempty"`
	Visible  bool   `json:"isVisible"`
}

// Job is the minimum job shape consumed by the listing surfaces. Only
// Published jobs are ever listed.
type Job struct {
	ID              string    `json:"_id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Company         Company   `json:"company"`
	JobType         string    `json:"jobType,omitempty"`
	LocationType    string    `json:"locationType,omitempty"`
	ExperienceLevel string    `json:"experienceLevel,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	Salary          Salary    `json:"salary"`
	Deadline        time.Time `json:"deadline,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	Status          JobStatus `json:"status"`
}

// JobSubmission is the `data` JSON field of a multipart job creation request.
// Validated at the gateway before anything is forwarded upstream; the
// upstream remains authoritative.
type JobSubmission struct {
	Title           string   `json:"title" validate:"required,min=3,max=140"`
	Description     string   `json:"description" validate:"required,min=20"`
	CompanyName     string   `json:"companyName" validate:"required"`
	JobType         string   `json:"jobType" validate:"required,oneof=full-time part-time contract internship freelance"`
	LocationType    string   `json:"locationType" validate:"required,oneof=remote onsite hybrid"`
	ExperienceLevel string   `json:"experienceLevel" validate:"omitempty,oneof=entry mid senior lead"`
	Skills          []string `json:"skills" validate:"omitempty,max=20,dive,min=1"`
	SalaryMin       int      `json:"salaryMin" validate:"omitempty,min=0"`
	SalaryMax       int      `json:"salaryMax" validate:"omitempty,gtefield=SalaryMin"`
	Currency        string   `json:"currency" validate:"omitempty,len=3"`
	Deadline        string   `json:"deadline" validate:"omitempty"`
}
