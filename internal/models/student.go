package models

// StudentLevel grades a student's experience.
type StudentLevel string

const (
	StudentLevelBeginner     StudentLevel = "Beginner"
	StudentLevelIntermediate StudentLevel = "Intermediate"
	StudentLevelAdvanced     StudentLevel = "Advanced"
	StudentLevelExpert       StudentLevel = "Expert"
)

// Valid returns true when the level is a supported value.
func (l StudentLevel) Valid() bool {
	switch l {
	case StudentLevelBeginner, StudentLevelIntermediate, StudentLevelAdvanced, StudentLevelExpert:
		return true
	default:
		return false
	}
}

// Student represents a learner who joins clubs and attends events.
type Student struct {
	ID        int          `db:"id" json:"id" validate:"required,gt=0"`
	FirstName string       `db:"first_name" json:"first_name" validate:"required"`
	LastName  string       `db:"last_name" json:"last_name" validate:"required"`
	Email     string       `db:"email" json:"email" validate:"omitempty,email"`
	Level     StudentLevel `db:"level" json:"level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
