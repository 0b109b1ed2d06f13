package services

import (
	"context"

	"github.com/intellimanage/platform/internal/dashboard"
	"github.com/intellimanage/platform/internal/models"
)

// DashboardService loads a project's tasks and sprints and hands them
// to the pure aggregator.
type DashboardService struct {
	projects *ProjectService
	sprints  *SprintService
	tasks    *TaskService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(projects *ProjectService, sprints *SprintService, tasks *TaskService) *DashboardService {
	return &DashboardService{projects: projects, sprints: sprints, tasks: tasks}
}

// Snapshot computes the dashboard for a project as of today.
func (s *DashboardService) Snapshot(ctx context.Context, projectID string) (*dashboard.Snapshot, error) {
	project, err := s.projects.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ModelsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sprints, err := s.sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dashboard.Compute(project, tasks, sprints, models.Today()), nil
}
