// Package applications is the REST client for the job-application
// resources: CRUD over applications, dashboard statistics, and upcoming
// interviews.
package applications

import (
	"io"

	"github.com/jobtrackapp/go-jobtrack-client/internal/utils"
)

// Status is an application's pipeline stage.
type Status string

const (
	StatusApplied      Status = "Applied"
	StatusGhosted      Status = "Ghosted"
	StatusInterviewing Status = "Interviewing"
	StatusAssessment   Status = "Assessment"
	StatusOffered      Status = "Offered"
)

// InterviewType is the kind of interview round.
type InterviewType string

const (
	InterviewTechnical    InterviewType = "Technical"
	InterviewHR           InterviewType = "HR"
	InterviewBehavioral   InterviewType = "Behavioral"
	InterviewFinal        InterviewType = "Final"
	InterviewPhoneScreen  InterviewType = "Phone Screen"
	InterviewSystemDesign InterviewType = "System Design"
)

// Application is the backend's application record. Resume is a
// server-relative media path; prefix it with Endpoints.MediaBase to
// download. Interview fields are present when a round is scheduled.
type Application struct {
	ID             int64   `json:"id"`
	Company        string  `json:"company"`
	Position       string  `json:"position"`
	AppliedDate    string  `json:"applied_date"`
	Status         Status  `json:"status"`
	Resume         *string `json:"resume,omitempty"`
	JobDescription *string `json:"job_description,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	ContactPhone   *string `json:"contact_phone,omitempty"`
	CompanyWebsite *string `json:"company_website,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	InterviewDate  *string `json:"interview_date,omitempty"`
	InterviewTime  *string `json:"interview_time,omitempty"`
	InterviewType  *string `json:"interview_type,omitempty"`
}

// Draft is the payload for creating or updating an application. Dates use
// the backend's YYYY-MM-DD form. The interview fields only take effect
// when Status is Interviewing.
type Draft struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	AppliedDate string `json:"applied_date"`
	Status      Status `json:"status"`

	JobDescription *string `json:"job_description,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	ContactPhone   *string `json:"contact_phone,omitempty"`
	CompanyWebsite *string `json:"company_website,omitempty"`
	Notes          *string `json:"notes,omitempty"`

	InterviewDate *string `json:"interview_date,omitempty"`
	InterviewTime *string `json:"interview_time,omitempty"`
	InterviewType *string `json:"interview_type,omitempty"`
}

// formValues flattens the draft for a multipart submission, skipping
// unset optional fields the way the original form omits empty inputs.
func (d Draft) formValues() map[string]string {
	values := map[string]string{
		"company":      d.Company,
		"position":     d.Position,
		"applied_date": d.AppliedDate,
		"status":       string(d.Status),
	}
	optional := map[string]*string{
		"job_description": d.JobDescription,
		"contact_email":   d.ContactEmail,
		"contact_phone":   d.ContactPhone,
		"company_website": d.CompanyWebsite,
		"notes":           d.Notes,
		"interview_date":  d.InterviewDate,
		"interview_time":  d.InterviewTime,
		"interview_type":  d.InterviewType,
	}
	for key, p := range optional {
		if utils.Value(p) != "" {
			values[key] = *p
		}
	}
	return values
}

// ResumeFile is an optional resume attachment for Create.
type ResumeFile struct {
	Name    string
	Content io.Reader
}

// Interview is an upcoming interview as listed on the dashboard.
type Interview struct {
	ID       int64  `json:"id"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Type     string `json:"type"`
}

// Stats are the dashboard aggregate counts by status.
type Stats struct {
	Total        int `json:"total"`
	Applied      int `json:"applied"`
	Ghosted      int `json:"ghosted"`
	Interviewing int `json:"interviewing"`
	Assessment   int `json:"assessment"`
}
