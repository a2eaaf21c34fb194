package lesson

import "time"

type Lesson struct {
	ID        string    `json:"id" db:"lesson_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Index     int       `json:"index" db:"index"`
	Name      string    `json:"name" db:"name"`
	VideoURL  string    `json:"videoUrl" db:"video_url"`
	Free      bool      `json:"free" db:"free"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type LessonNew struct {
	Index    int    `json:"index" validate:"gte=0"`
	Name     string `json:"name" validate:"required"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
	Free     bool   `json:"free"`
}
