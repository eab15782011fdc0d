package seed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/business-school/campus-api/internal/models"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

func TestDefaultDatasetCounts(t *testing.T) {
	counts := Default().Counts()
	assert.Equal(t, map[string]int{
		TableDepartments:      3,
		TableClubs:            4,
		TableStudents:         12,
		TableEvents:           6,
		TableStudentClubs:     10,
		TableEventAttendances: 5,
		TableEventClubs:       6,
	}, counts)
}

func TestTablesReturnsIndependentCopy(t *testing.T) {
	first := Tables()
	require.Len(t, first, 7)
	assert.Equal(t, TableDepartments, first[0])
	assert.Equal(t, TableEventClubs, first[6])

	first[0] = "users"
	assert.Equal(t, TableDepartments, Tables()[0])
}

func TestDefaultDatasetIsConsistent(t *testing.T) {
	report := Verify(Default(), nil)
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())
	assert.NoError(t, report.Err(true))
}

func TestDefaultJoinRowsReferenceSeededParents(t *testing.T) {
	d := Default()
	students := map[int]bool{}
	for _, s := range d.Students {
		students[s.ID] = true
	}
	clubs := map[int]bool{}
	for _, c := range d.Clubs {
		clubs[c.ID] = true
	}
	events := map[int]bool{}
	for _, e := range d.Events {
		events[e.ID] = true
	}

	for _, m := range d.StudentClubs {
		assert.True(t, students[m.StudentID], "student %d", m.StudentID)
		assert.True(t, clubs[m.ClubID], "club %d", m.ClubID)
	}
	for _, l := range d.EventClubs {
		assert.True(t, events[l.EventID], "event %d", l.EventID)
		assert.True(t, clubs[l.ClubID], "club %d", l.ClubID)
	}
	for _, a := range d.EventAttendances {
		assert.True(t, events[a.EventID], "event %d", a.EventID)
		assert.True(t, students[a.StudentID], "student %d", a.StudentID)
	}
}

func TestDefaultEventsEndAfterStart(t *testing.T) {
	for _, e := range Default().Events {
		assert.False(t, e.EndDate.Before(e.StartDate), "event %d ends before it starts", e.ID)
	}
}

func TestVerifyFlagsDanglingDepartment(t *testing.T) {
	d := Default()
	d.Clubs = append(d.Clubs, models.Club{ID: 5, Name: "Ghost Club", DepartmentID: 99})

	report := Verify(d, nil)
	require.Len(t, report.Errors(), 1)
	finding := report.Errors()[0]
	assert.Equal(t, TableClubs, finding.Table)
	assert.Equal(t, "id=5", finding.Key)
	assert.Contains(t, finding.Message, "department_id 99")

	err := report.Err(false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSeed))
}

func TestVerifyFlagsDuplicateCompositeKeys(t *testing.T) {
	d := Default()
	d.EventAttendances = append(d.EventAttendances, models.EventAttendance{EventID: 1, StudentID: 1, RegisteredAt: time.Now()})
	d.StudentClubs = append(d.StudentClubs, d.StudentClubs[0])
	d.EventClubs = append(d.EventClubs, d.EventClubs[0])

	report := Verify(d, nil)
	tables := map[string]int{}
	for _, f := range report.Errors() {
		tables[f.Table]++
	}
	assert.Equal(t, 1, tables[TableEventAttendances])
	assert.Equal(t, 1, tables[TableStudentClubs])
	assert.Equal(t, 1, tables[TableEventClubs])
}

func TestVerifyWarnsOnLaxRowsAndStrictModeBlocks(t *testing.T) {
	d := Default()
	d.Events[0].EndDate = d.Events[0].StartDate.Add(-time.Hour)
	d.EventAttendances[0].AttendedAt = nil
	d.EventAttendances[2].PointsAwarded = 5

	report := Verify(d, nil)
	assert.Empty(t, report.Errors())
	require.Len(t, report.Warnings(), 3)
	assert.NoError(t, report.Err(false))
	assert.Error(t, report.Err(true))
}

func TestVerifyWarnsWhenOverCapacity(t *testing.T) {
	d := Default()
	d.Events[2].Capacity = ptr(0)

	report := Verify(d, nil)
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, "id=3", report.Warnings()[0].Key)
}

func TestVerifyReportsFieldConstraints(t *testing.T) {
	d := Default()
	d.Students[0].Level = "Guru"
	d.Departments[0].Email = "not-an-email"

	report := Verify(d, nil)
	require.Len(t, report.Errors(), 2)
}
