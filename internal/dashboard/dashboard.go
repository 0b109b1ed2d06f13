// Package dashboard derives project-level health metrics from a
// snapshot of the project's tasks and sprints. Computation is pure;
// callers load the snapshot and resolve display names afterwards.
package dashboard

import (
	"sort"

	"github.com/intellimanage/platform/internal/models"
	"github.com/intellimanage/platform/internal/schedule"
)

// Snapshot is the computed dashboard for one project.
type Snapshot struct {
	ProjectID        string                   `json:"project_id"`
	ProjectName      string                   `json:"project_name"`
	OverallProgress  float64                  `json:"overall_progress"`
	TaskDistribution map[string]int           `json:"task_distribution"`
	BlockedCount     int                      `json:"blocked_tasks_count"`
	OverdueCount     int                      `json:"overdue_tasks_count"`
	ActiveSprint     *models.SprintResponse   `json:"active_sprint,omitempty"`
	AllSprints       []models.SprintResponse  `json:"all_sprints"`
}

// Compute builds the dashboard snapshot for the given day.
func Compute(project *models.Project, tasks []*models.Task, sprints []*models.Sprint, today models.Date) *Snapshot {
	snap := &Snapshot{
		ProjectID:        project.ID,
		ProjectName:      project.Name,
		TaskDistribution: make(map[string]int),
		AllSprints:       make([]models.SprintResponse, 0, len(sprints)),
	}

	sprintByID := make(map[string]*models.Sprint, len(sprints))
	for _, s := range sprints {
		sprintByID[s.ID] = s
	}

	done := 0
	for _, t := range tasks {
		snap.TaskDistribution[t.Status.String()]++
		if t.Status.Done() {
			done++
		}
		if t.Status.Blocked() {
			snap.BlockedCount++
		}
		if t.SprintID != nil && !t.Status.Done() {
			if s, ok := sprintByID[*t.SprintID]; ok && s.EndDate != nil && s.EndDate.Before(today) {
				snap.OverdueCount++
			}
		}
	}
	if len(tasks) > 0 {
		snap.OverallProgress = float64(done) / float64(len(tasks)) * 100
	}

	if active := selectActiveSprint(sprints, today); active != nil {
		resp := summarize(active, today)
		resp.Tasks = make([]models.TaskResponse, 0)
		total, completed := 0, 0
		for _, t := range tasks {
			if t.SprintID == nil || *t.SprintID != active.ID {
				continue
			}
			total++
			if t.Status.Done() {
				completed++
			}
			resp.Tasks = append(resp.Tasks, models.TaskResponse{
				ID:         t.ID,
				Title:      t.Title,
				Status:     t.Status,
				Priority:   t.Priority,
				ProjectID:  t.ProjectID,
				SprintID:   t.SprintID,
				AssigneeID: t.AssigneeID,
				ReporterID: t.ReporterID,
				CreatedAt:  t.CreatedAt,
			})
		}
		resp.TaskCount = total
		if total > 0 {
			resp.Progress = float64(completed) / float64(total) * 100
		}
		snap.ActiveSprint = &resp
	}

	// Timeline keeps storage order; callers sort if they need it.
	for _, s := range sprints {
		snap.AllSprints = append(snap.AllSprints, summarize(s, today))
	}

	return snap
}

// selectActiveSprint picks the sprint a dashboard should feature.
// Phase 1: among fully-dated sprints whose range contains today and
// whose derived status is not completed, earliest start wins. Phase 2:
// the nearest upcoming non-completed sprint. Otherwise none.
func selectActiveSprint(sprints []*models.Sprint, today models.Date) *models.Sprint {
	var current []*models.Sprint
	for _, s := range sprints {
		if s.StartDate == nil || s.EndDate == nil {
			continue
		}
		if s.StartDate.After(today) || s.EndDate.Before(today) {
			continue
		}
		if schedule.Status(s, today) == models.SprintCompleted {
			continue
		}
		current = append(current, s)
	}
	if pick := earliestStart(current); pick != nil {
		return pick
	}

	var upcoming []*models.Sprint
	for _, s := range sprints {
		if s.StartDate == nil || !s.StartDate.After(today) {
			continue
		}
		if schedule.Status(s, today) == models.SprintCompleted {
			continue
		}
		upcoming = append(upcoming, s)
	}
	return earliestStart(upcoming)
}

func earliestStart(sprints []*models.Sprint) *models.Sprint {
	if len(sprints) == 0 {
		return nil
	}
	sort.SliceStable(sprints, func(i, j int) bool {
		return sprints[i].StartDate.Before(*sprints[j].StartDate)
	})
	return sprints[0]
}

func summarize(s *models.Sprint, today models.Date) models.SprintResponse {
	return models.SprintResponse{
		ID:        s.ID,
		Name:      s.Name,
		Goal:      s.Goal,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    schedule.Status(s, today),
		ProjectID: s.ProjectID,
	}
}
