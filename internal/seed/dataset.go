// Package seed holds the fixed demo dataset and its static consistency checks.
package seed

import (
	"time"

	"github.com/business-school/campus-api/internal/models"
)

// Dataset is a complete, ordered set of seed rows. Slices are listed in
// insertion order: parents before children.
type Dataset struct {
	Departments      []models.Department
	Clubs            []models.Club
	Students         []models.Student
	Events           []models.Event
	StudentClubs     []models.StudentClub
	EventAttendances []models.EventAttendance
	EventClubs       []models.EventClub
}

// Counts returns the number of rows per table keyed by table name.
func (d Dataset) Counts() map[string]int {
	return map[string]int{
		TableDepartments:      len(d.Departments),
		TableClubs:            len(d.Clubs),
		TableStudents:         len(d.Students),
		TableEvents:           len(d.Events),
		TableStudentClubs:     len(d.StudentClubs),
		TableEventAttendances: len(d.EventAttendances),
		TableEventClubs:       len(d.EventClubs),
	}
}

// Table names in dependency order.
const (
	TableDepartments      = "departments"
	TableClubs            = "clubs"
	TableStudents         = "students"
	TableEvents           = "events"
	TableStudentClubs     = "student_clubs"
	TableEventAttendances = "event_attendances"
	TableEventClubs       = "event_clubs"
)

var tables = []string{
	TableDepartments,
	TableClubs,
	TableStudents,
	TableEvents,
	TableStudentClubs,
	TableEventAttendances,
	TableEventClubs,
}

// Tables lists seeded tables in the order they are written.
func Tables() []string {
	return append([]string(nil), tables...)
}

func date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// Default returns the business school demo dataset.
func Default() Dataset {
	return Dataset{
		Departments: []models.Department{
			{ID: 1, Name: "Finance & Accounting", PhoneNumber: "601-1001", Email: "finance@businessschool.com", OfficeLocation: "Building A - Room 201"},
			{ID: 2, Name: "Marketing & Sales", PhoneNumber: "601-1002", Email: "marketing@businessschool.com", OfficeLocation: "Building B - Room 105"},
			{ID: 3, Name: "Entrepreneurship", PhoneNumber: "601-1003", Email: "entrepreneur@businessschool.com", OfficeLocation: "Building C - Room 301"},
		},
		Clubs: []models.Club{
			{ID: 1, Name: "Finance Club", Description: "Investment and stock market", DepartmentID: 1},
			{ID: 2, Name: "Marketing Masters", Description: "Digital marketing and branding", DepartmentID: 2},
			{ID: 3, Name: "Startup League", Description: "Pitch your business idea", DepartmentID: 3},
			{ID: 4, Name: "Women in Business", Description: "Empowerment and networking", DepartmentID: 2},
		},
		Students: []models.Student{
			{ID: 1, FirstName: "Ana", LastName: "García", Email: "ana@alumnos.com", Level: models.StudentLevelBeginner},
			{ID: 2, FirstName: "Carlos", LastName: "López", Email: "carlos@alumnos.com", Level: models.StudentLevelExpert},
			{ID: 3, FirstName: "Lucía", LastName: "Martínez", Email: "lucia@alumnos.com", Level: models.StudentLevelAdvanced},
			{ID: 4, FirstName: "Pablo", LastName: "Ruiz", Email: "pablo@alumnos.com", Level: models.StudentLevelIntermediate},
			{ID: 5, FirstName: "Sofía", LastName: "Díaz", Email: "sofia@alumnos.com", Level: models.StudentLevelBeginner},
			{ID: 6, FirstName: "Diego", LastName: "Moreno", Email: "diego@alumnos.com", Level: models.StudentLevelIntermediate},
			{ID: 7, FirstName: "Elena", LastName: "Jiménez", Email: "elena@alumnos.com", Level: models.StudentLevelBeginner},
			{ID: 8, FirstName: "Marcos", LastName: "Vargas", Email: "marcos@alumnos.com", Level: models.StudentLevelExpert},
			{ID: 9, FirstName: "Valeria", LastName: "Castillo", Email: "valeria@alumnos.com", Level: models.StudentLevelBeginner},
			{ID: 10, FirstName: "Javier", LastName: "Ortega", Email: "javier@alumnos.com", Level: models.StudentLevelIntermediate},
			{ID: 11, FirstName: "Clara", LastName: "Romero", Email: "clara@alumnos.com", Level: models.StudentLevelBeginner},
			{ID: 12, FirstName: "Hugo", LastName: "Sanz", Email: "hugo@alumnos.com", Level: models.StudentLevelExpert},
		},
		Events: []models.Event{
			{ID: 1, Title: "Investment Workshop", Description: ptr("Learn about stocks"), StartDate: date(2025, 12, 10, 18, 0), EndDate: date(2025, 12, 10, 20, 0), Capacity: ptr(50), PointsReward: 20, DepartmentID: ptr(1)},
			{ID: 2, Title: "Digital Marketing Trends 2026", Description: ptr("TikTok and AI"), StartDate: date(2025, 12, 15, 17, 30), EndDate: date(2025, 12, 15, 19, 0), Capacity: ptr(80), PointsReward: 15, DepartmentID: ptr(2)},
			{ID: 3, Title: "Pitch Night", Description: ptr("Present your startup"), StartDate: date(2025, 12, 20, 19, 0), EndDate: date(2025, 12, 20, 22, 0), Capacity: ptr(40), PointsReward: 30, DepartmentID: ptr(3)},
			{ID: 4, Title: "Women Leadership Panel", Description: ptr("Inspiring talks"), StartDate: date(2026, 1, 8, 18, 0), EndDate: date(2026, 1, 8, 20, 0), PointsReward: 25, DepartmentID: ptr(2)},
			{ID: 5, Title: "Crypto & Blockchain Basics", Description: ptr("Intro to Web3"), StartDate: date(2026, 1, 15, 17, 0), EndDate: date(2026, 1, 15, 18, 30), Capacity: ptr(60), PointsReward: 20, DepartmentID: ptr(1)},
			{ID: 6, Title: "Startup Weekend", Description: ptr("Build your MVP"), StartDate: date(2026, 1, 25, 9, 0), EndDate: date(2026, 1, 26, 18, 0), Capacity: ptr(30), PointsReward: 50, DepartmentID: ptr(3)},
		},
		StudentClubs: []models.StudentClub{
			{StudentID: 1, ClubID: 1, JoinedAt: date(2025, 9, 15, 0, 0), IsLeader: true, PointsFromThisClub: 40},
			{StudentID: 2, ClubID: 1, JoinedAt: date(2025, 9, 20, 0, 0), PointsFromThisClub: 15},
			{StudentID: 3, ClubID: 2, JoinedAt: date(2025, 9, 10, 0, 0), IsLeader: true, PointsFromThisClub: 50},
			{StudentID: 4, ClubID: 2, JoinedAt: date(2025, 9, 25, 0, 0), PointsFromThisClub: 10},
			{StudentID: 5, ClubID: 3, JoinedAt: date(2025, 9, 5, 0, 0), IsLeader: true, PointsFromThisClub: 60},
			{StudentID: 6, ClubID: 3, JoinedAt: date(2025, 9, 18, 0, 0), PointsFromThisClub: 25},
			{StudentID: 7, ClubID: 4, JoinedAt: date(2025, 10, 1, 0, 0), IsLeader: true, PointsFromThisClub: 55},
			{StudentID: 8, ClubID: 4, JoinedAt: date(2025, 10, 5, 0, 0), PointsFromThisClub: 20},
			{StudentID: 9, ClubID: 1, JoinedAt: date(2025, 10, 10, 0, 0), PointsFromThisClub: 5},
			{StudentID: 10, ClubID: 2, JoinedAt: date(2025, 10, 12, 0, 0), PointsFromThisClub: 10},
		},
		EventAttendances: []models.EventAttendance{
			{EventID: 1, StudentID: 1, RegisteredAt: date(2025, 12, 1, 0, 0), HasAttended: true, AttendedAt: ptr(date(2025, 12, 10, 18, 30)), PointsAwarded: 20},
			{EventID: 1, StudentID: 2, RegisteredAt: date(2025, 12, 2, 0, 0), HasAttended: true, AttendedAt: ptr(date(2025, 12, 10, 18, 15)), PointsAwarded: 20},
			{EventID: 2, StudentID: 3, RegisteredAt: date(2025, 12, 5, 0, 0)},
			{EventID: 3, StudentID: 5, RegisteredAt: date(2025, 12, 10, 0, 0)},
			{EventID: 4, StudentID: 7, RegisteredAt: date(2025, 12, 20, 0, 0)},
		},
		EventClubs: []models.EventClub{
			{EventID: 1, ClubID: 1},
			{EventID: 2, ClubID: 2},
			{EventID: 3, ClubID: 3},
			{EventID: 4, ClubID: 4},
			{EventID: 5, ClubID: 1},
			{EventID: 6, ClubID: 3},
		},
	}
}
