package models

import "time"

// Course groups lessons under a shared title. Lessons reference their course
// by ID; there is no cascading delete in either direction.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Enrollments []string  `json:"enrollments"`
}

// IsEnrolled reports whether the user already appears in the enrollment list.
func (c *Course) IsEnrolled(userID string) bool {
	for _, id := range c.Enrollments {
		if id == userID {
			return true
		}
	}
	return false
}
