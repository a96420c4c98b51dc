package dto

import "time"

// JobResponse is the envelope every job endpoint returns. Per-item
// failures live inside Result; the envelope itself is 200 whenever the
// run executed.
type JobResponse struct {
	Success   bool        `json:"success"`
	Timestamp time.Time   `json:"timestamp"`
	Result    interface{} `json:"result"`
}

// NewJobResponse wraps a job result in the standard envelope.
func NewJobResponse(result interface{}) *JobResponse {
	return &JobResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Result:    result,
	}
}
