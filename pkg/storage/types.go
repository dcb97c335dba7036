package storage

import "time"

// User represents a registered account
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"full_name"`
	Qualification int       `json:"qualification"`
	DOB           time.Time `json:"dob"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
}

// Subject represents a subject scoped to a qualification level (grade 5-12)
type Subject struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Qualification int    `json:"qualification"`
	Description   string `json:"description"`
}

// Chapter belongs to a Subject. Subject is populated on list reads where
// one level of parent expansion is required.
type Chapter struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SubjectID   int64    `json:"subject_id"`
	Subject     *Subject `json:"subject,omitempty"`
}

// Quiz belongs to a Chapter. DurationMinutes is elapsed time, not a clock
// time; the API serializes it as HH:MM.
type Quiz struct {
	ID              int64     `json:"id"`
	ChapterID       int64     `json:"chapter_id"`
	DateOfQuiz      time.Time `json:"date_of_quiz"`
	DurationMinutes int       `json:"time_duration_minutes"`
	Remarks         string    `json:"remarks"`
}

// Question belongs to a Quiz. CorrectOption selects among the four options
// and is constrained to 1-4.
type Question struct {
	ID                int64  `json:"id"`
	QuizID            int64  `json:"quiz_id"`
	QuestionStatement string `json:"question_statement"`
	Option1           string `json:"option1"`
	Option2           string `json:"option2"`
	Option3           string `json:"option3"`
	Option4           string `json:"option4"`
	CorrectOption     int    `json:"correct_option"`
}

// Score records a quiz attempt result. Quiz taking is out of scope for this
// service; scores are written by an external system and only listed here.
type Score struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	QuizID      int64     `json:"quiz_id"`
	TotalScored int       `json:"total_scored"`
	CreatedAt   time.Time `json:"created_at"`
}
