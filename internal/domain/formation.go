package domain

import "time"

const (
	FormationStatusUpcoming = "upcoming"
	FormationStatusOngoing  = "ongoing"
	FormationStatusDone     = "completed"
)

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Formation is a training session sold per seat.
type Formation struct {
	ID                  int64     `json:"id,string" form:"id"`
	Title               string    `gorm:"index" json:"title" form:"title"`
	Description         string    `gorm:"type:text" json:"description,omitempty" form:"description"`
	Duration            string    `gorm:"size:100" json:"duration" form:"duration"`
	Price               float64   `json:"price" form:"price"`
	MaxParticipants     int       `json:"max_participants" form:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	StartDate           time.Time `json:"start_date" form:"start_date"`
	Status              string    `gorm:"size:20;index;default:'upcoming'" json:"status" form:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Formation) TableName() string {
	return "formations"
}

type Student struct {
	ID             int64     `json:"id,string" form:"id"`
	Name           string    `gorm:"index" json:"name" form:"name"`
	Email          string    `gorm:"size:200" json:"email,omitempty" form:"email"`
	Phone          string    `gorm:"size:50" json:"phone,omitempty" form:"phone"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Status         string    `gorm:"size:20;default:'active'" json:"status" form:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

// StudentEnrollment links a student to a formation. Creating one consumes a
// seat; PaidAmount accumulates payments up to TotalAmount.
type StudentEnrollment struct {
	ID             int64      `json:"id,string" form:"id"`
	StudentID      int64      `gorm:"index" json:"student_id,string" form:"student_id"`
	FormationID    int64      `gorm:"index" json:"formation_id,string" form:"formation_id"`
	TotalAmount    float64    `json:"total_amount" form:"total_amount"`
	PaidAmount     float64    `json:"paid_amount" form:"paid_amount"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
	Status         string     `gorm:"size:20;index;default:'active'" json:"status" form:"status"`
	Student        *Student   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Formation      *Formation `gorm:"foreignKey:FormationID" json:"formation,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (StudentEnrollment) TableName() string {
	return "student_enrollments"
}
