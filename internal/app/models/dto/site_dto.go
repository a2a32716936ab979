package dto

import "time"

// UpdateDeadlineRequest moves the application deadline. A null deadline
// keeps the window open indefinitely.
type UpdateDeadlineRequest struct {
	Deadline *time.Time `json:"deadline" example:"2026-10-31T23:59:59Z"`
}
