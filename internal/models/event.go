package models

import "time"

// DefaultPointsReward is awarded for attending an event unless overridden.
const DefaultPointsReward = 10

// Event is a scheduled activity, optionally owned by a department and organised by an identity user.
type Event struct {
	ID           int       `db:"id" json:"id" validate:"required,gt=0"`
	Title        string    `db:"title" json:"title" validate:"required,max=100"`
	Description  *string   `db:"description" json:"description,omitempty" validate:"omitempty,max=500"`
	StartDate    time.Time `db:"start_date" json:"start_date" validate:"required"`
	EndDate      time.Time `db:"end_date" json:"end_date" validate:"required"`
	Capacity     *int      `db:"capacity" json:"capacity,omitempty" validate:"omitempty,gte=0"`
	PointsReward int       `db:"points_reward" json:"points_reward" validate:"gte=0"`
	DepartmentID *int      `db:"department_id" json:"department_id,omitempty" validate:"omitempty,gt=0"`
	OrganizerID  *string   `db:"organizer_id" json:"organizer_id,omitempty"`
}

// EventClub links an event to a club taking part in it.
type EventClub struct {
	EventID int `db:"event_id" json:"event_id" validate:"required,gt=0"`
	ClubID  int `db:"club_id" json:"club_id" validate:"required,gt=0"`
}

// Key returns the composite primary key of the link.
func (l EventClub) Key() [2]int {
	return [2]int{l.EventID, l.ClubID}
}

// EventAttendance tracks a student's registration and attendance for an event.
type EventAttendance struct {
	EventID       int        `db:"event_id" json:"event_id" validate:"required,gt=0"`
	StudentID     int        `db:"student_id" json:"student_id" validate:"required,gt=0"`
	RegisteredAt  time.Time  `db:"registered_at" json:"registered_at" validate:"required"`
	HasAttended   bool       `db:"has_attended" json:"has_attended"`
	AttendedAt    *time.Time `db:"attended_at" json:"attended_at,omitempty"`
	PointsAwarded int        `db:"points_awarded" json:"points_awarded" validate:"gte=0"`
}

// Key returns the composite primary key of the registration.
func (a EventAttendance) Key() [2]int {
	return [2]int{a.EventID, a.StudentID}
}
