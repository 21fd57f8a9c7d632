package models

import "time"

type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	ID          string
	Title       string
	Department  string
	Location    string
	Description string
	Status      JobStatus
	ClosesAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusHired     ApplicationStatus = "hired"
)

// Application may be submitted before an account exists; UserID stays nil
// until the guest records are attached to a newly identified user.
type Application struct {
	ID         string
	JobID      string
	UserID     *string
	Email      string
	FirstName  string
	LastName   string
	ResumeKey  string
	CoverNote  string
	Status     ApplicationStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
