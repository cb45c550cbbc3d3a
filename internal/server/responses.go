package server

import "time"

// PublishResponse is returned when a publish request is accepted.
type PublishResponse struct {
	JobID         string `json:"job_id"`
	DeploymentURL string `json:"deployment_url"`
}

// JobResponse is the job status payload.
type JobResponse struct {
	ID            string    `json:"id"`
	WebsiteID     string    `json:"website_id"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	Message       string    `json:"message"`
	DeploymentURL string    `json:"deployment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ResolveResponse maps a hostname to the website serving it.
type ResolveResponse struct {
	Host      string `json:"host"`
	WebsiteID string `json:"website_id"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
