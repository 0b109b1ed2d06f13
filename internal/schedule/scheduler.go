// Package schedule validates sprint date ranges against their parent
// project and sibling sprints, and derives sprint lifecycle status.
package schedule

import (
	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// Validate checks a candidate sprint against its parent project and
// the project's other sprints. The candidate is excluded from the
// sibling comparison by ID, so updates do not collide with themselves.
// The first violated rule is reported; there is no ranking of partial
// overlaps.
func Validate(candidate *models.Sprint, project *models.Project, siblings []*models.Sprint) error {
	if candidate.StartDate == nil || candidate.EndDate == nil {
		return apperrors.InvalidState("sprint requires both a start and an end date")
	}
	if candidate.EndDate.Before(*candidate.StartDate) {
		return apperrors.InvalidState("sprint end date %s precedes its start date %s",
			candidate.EndDate, candidate.StartDate)
	}
	if candidate.StartDate.Before(project.StartDate) {
		return apperrors.InvalidState("sprint cannot start before the project start date %s",
			project.StartDate)
	}
	for _, sibling := range siblings {
		if sibling.ID == candidate.ID {
			continue
		}
		if sibling.StartDate == nil || sibling.EndDate == nil {
			continue
		}
		// Half-open interval overlap test.
		if candidate.StartDate.Before(*sibling.EndDate) && candidate.EndDate.After(*sibling.StartDate) {
			return apperrors.InvalidState("sprint dates overlap with sprint %q (%s to %s)",
				sibling.Name, sibling.StartDate, sibling.EndDate)
		}
	}
	return nil
}

// Status derives a sprint's lifecycle status for a given day. The
// value is computed on the read path and never stored.
func Status(sprint *models.Sprint, today models.Date) models.SprintStatus {
	if sprint.EndDate != nil && today.After(*sprint.EndDate) {
		return models.SprintCompleted
	}
	if sprint.StartDate != nil && !today.Before(*sprint.StartDate) {
		return models.SprintActive
	}
	return models.SprintPlanned
}
