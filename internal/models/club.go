package models

import "time"

// Club is a student society run under a department.
type Club struct {
	ID           int    `db:"id" json:"id" validate:"required,gt=0"`
	Name         string `db:"name" json:"name" validate:"required,max=100"`
	Description  string `db:"description" json:"description"`
	DepartmentID int    `db:"department_id" json:"department_id" validate:"required,gt=0"`
}

// StudentClub records a student's membership of a club.
type StudentClub struct {
	StudentID          int       `db:"student_id" json:"student_id" validate:"required,gt=0"`
	ClubID             int       `db:"club_id" json:"club_id" validate:"required,gt=0"`
	JoinedAt           time.Time `db:"joined_at" json:"joined_at" validate:"required"`
	IsLeader           bool      `db:"is_leader" json:"is_leader"`
	PointsFromThisClub int       `db:"points_from_this_club" json:"points_from_this_club" validate:"gte=0"`
}

// Key returns the composite primary key of the membership.
func (m StudentClub) Key() [2]int {
	return [2]int{m.StudentID, m.ClubID}
}
