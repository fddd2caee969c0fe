package bitable

import (
	"context"
	"fmt"

	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/repository"
)

// Project table field names.
const (
	fieldProjectID   = "project_id"
	fieldProjectName = "name"
	fieldDescription = "description"
	fieldURL         = "url"
	fieldImageURL    = "image_url"
	fieldTeamName    = "team_name"
	fieldTeamCode    = "team_code"
	fieldSiteID      = "site_id"
	fieldUV          = "uv"
	fieldEnabled     = "enabled"
)

// ProjectRepository manages project records over the store.
type ProjectRepository struct {
	client *Client
	table  string
}

// NewProjectRepository creates a ProjectRepository.
func NewProjectRepository(client *Client, table string) *ProjectRepository {
	return &ProjectRepository{client: client, table: table}
}

// List returns every project in the table.
func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	projects := make([]project.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, toProject(rec))
	}
	return projects, nil
}

// Get retrieves a project by its event identifier via a table scan; the
// store offers no secondary index on application fields.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, rec := range records {
		if rec.Int(fieldProjectID) == id {
			proj := toProject(rec)
			return &proj, nil
		}
	}
	return nil, fmt.Errorf("project %d: %w", id, repository.ErrNotFound)
}

// UpdateUV overwrites the cumulative unique-visitor count.
func (r *ProjectRepository) UpdateUV(ctx context.Context, recordID string, uv int64) error {
	err := r.client.UpdateRecord(ctx, r.table, recordID, map[string]any{fieldUV: uv})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func toProject(rec Record) project.Project {
	return project.Project{
		ID:          rec.Int(fieldProjectID),
		Name:        rec.String(fieldProjectName),
		Description: rec.String(fieldDescription),
		URL:         rec.String(fieldURL),
		Image:       rec.String(fieldImageURL),
		TeamName:    rec.String(fieldTeamName),
		TeamCode:    rec.String(fieldTeamCode),
		SiteID:      rec.String(fieldSiteID),
		UV:          rec.Int(fieldUV),
		Enabled:     rec.Bool(fieldEnabled, true),
		RecordID:    rec.ID,
	}
}
