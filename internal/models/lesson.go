package models

import "time"

// Lesson is one durable unit of review guidance, taught out of band and
// retrieved by semantic similarity during reviews. Lessons are immutable
// once stored.
type Lesson struct {
	ID        string
	Text      string
	Category  string
	CreatedAt time.Time
}
