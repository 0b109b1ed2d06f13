package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

func date(y int, m time.Month, d int) *models.Date {
	dt := models.NewDate(y, m, d)
	return &dt
}

func testProject() *models.Project {
	return &models.Project{ID: "p1", Name: "Apollo", StartDate: models.NewDate(2026, time.March, 1)}
}

func sprint(id string, start, end *models.Date) *models.Sprint {
	return &models.Sprint{ID: id, Name: "Sprint " + id, StartDate: start, EndDate: end, ProjectID: "p1"}
}

func TestValidate_OK(t *testing.T) {
	s := sprint("s1", date(2026, time.March, 1), date(2026, time.March, 14))
	if err := Validate(s, testProject(), nil); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}

func TestValidate_MissingDates(t *testing.T) {
	s := sprint("s1", nil, date(2026, time.March, 14))
	err := Validate(s, testProject(), nil)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("Validate = %v, want InvalidState", err)
	}
}

func TestValidate_EndBeforeStart(t *testing.T) {
	s := sprint("s1", date(2026, time.March, 14), date(2026, time.March, 1))
	err := Validate(s, testProject(), nil)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("Validate = %v, want InvalidState", err)
	}
}

func TestValidate_StartBeforeProject(t *testing.T) {
	s := sprint("s1", date(2026, time.February, 20), date(2026, time.March, 5))
	err := Validate(s, testProject(), nil)
	if !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Fatalf("Validate = %v, want InvalidState", err)
	}
}

func TestValidate_Overlap(t *testing.T) {
	existing := sprint("s1", date(2026, time.March, 1), date(2026, time.March, 14))
	existing.Name = "Iteration One"

	cases := []struct {
		name       string
		start, end *models.Date
		overlap    bool
	}{
		{"inside", date(2026, time.March, 5), date(2026, time.March, 10), true},
		{"straddles start", date(2026, time.March, 10), date(2026, time.March, 20), true},
		{"contains", date(2026, time.March, 1), date(2026, time.March, 31), true},
		{"touches end", date(2026, time.March, 14), date(2026, time.March, 28), false},
		{"after", date(2026, time.March, 15), date(2026, time.March, 28), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := sprint("s2", tc.start, tc.end)
			err := Validate(c, testProject(), []*models.Sprint{existing})
			if tc.overlap {
				if !apperrors.IsKind(err, apperrors.KindInvalidState) {
					t.Fatalf("Validate = %v, want InvalidState", err)
				}
				if !strings.Contains(err.Error(), "Iteration One") {
					t.Errorf("error %q does not name the conflicting sprint", err)
				}
			} else if err != nil {
				t.Fatalf("Validate = %v, want nil", err)
			}
		})
	}
}

func TestValidate_SelfExcludedOnUpdate(t *testing.T) {
	s := sprint("s1", date(2026, time.March, 1), date(2026, time.March, 14))
	// Same ID in siblings models an update reading its own pre-image.
	if err := Validate(s, testProject(), []*models.Sprint{s}); err != nil {
		t.Fatalf("Validate = %v, want nil (self excluded)", err)
	}
}

func TestStatus(t *testing.T) {
	today := models.NewDate(2026, time.March, 10)
	cases := []struct {
		name       string
		start, end *models.Date
		want       models.SprintStatus
	}{
		{"completed", date(2026, time.March, 1), date(2026, time.March, 9), models.SprintCompleted},
		{"active", date(2026, time.March, 5), date(2026, time.March, 19), models.SprintActive},
		{"starts today", date(2026, time.March, 10), date(2026, time.March, 24), models.SprintActive},
		{"ends today", date(2026, time.March, 1), date(2026, time.March, 10), models.SprintActive},
		{"planned", date(2026, time.March, 11), date(2026, time.March, 25), models.SprintPlanned},
		{"no dates", nil, nil, models.SprintPlanned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Status(sprint("s", tc.start, tc.end), today)
			if got != tc.want {
				t.Errorf("Status = %s, want %s", got, tc.want)
			}
		})
	}
}
