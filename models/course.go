package models

import "time"

// Course is static reference data managed by site admins.
type Course struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city,omitempty" db:"city"`
	State     *string   `json:"state,omitempty" db:"state"`
	NumHoles  int       `json:"num_holes" db:"num_holes"`
	ImageKey  *string   `json:"-" db:"image_key"`
	ImageURL  *string   `json:"image_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Holes []Hole      `json:"holes,omitempty" db:"-"`
	Tees  []CourseTee `json:"tees,omitempty" db:"-"`
}

// Hole holds par, stroke index and yardage for one hole of a course.
type Hole struct {
	ID            int `json:"id" db:"id"`
	CourseID      int `json:"course_id" db:"course_id"`
	Number        int `json:"number" db:"number"`
	Par           int `json:"par" db:"par"`
	HandicapIndex int `json:"handicap_index" db:"handicap_index"`
	Yards         int `json:"yards" db:"yards"`
}

// CourseTee is one rated tee set. Rating and slope feed the handicap
// differential computation.
type CourseTee struct {
	ID       int     `json:"id" db:"id"`
	CourseID int     `json:"course_id" db:"course_id"`
	Name     string  `json:"name" db:"name"`
	Gender   *string `json:"gender,omitempty" db:"gender"`
	Rating   float64 `json:"rating" db:"rating"`
	Slope    int     `json:"slope" db:"slope"`
}
