package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/repository"
)

// ProjectRepository stores projects in SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Seed inserts a project, assigning a record id.
func (r *ProjectRepository) Seed(ctx context.Context, proj *project.Project) error {
	if proj.RecordID == "" {
		proj.RecordID = uuid.NewString()
	}
	query := `
		INSERT INTO projects (record_id, project_id, name, description, url, image_url, team_name, team_code, site_id, uv, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		proj.RecordID,
		proj.ID,
		proj.Name,
		proj.Description,
		proj.URL,
		proj.Image,
		proj.TeamName,
		proj.TeamCode,
		proj.SiteID,
		proj.UV,
		proj.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

const projectColumns = `record_id, project_id, name, description, url, image_url, team_name, team_code, site_id, uv, enabled`

// Get retrieves a project by its event identifier
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = ?`

	var proj project.Project
	err := scanProject(r.db.QueryRowContext(ctx, query, id), &proj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &proj, nil
}

// List returns every project
func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY project_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var proj project.Project
		if err := scanProject(rows, &proj); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

// UpdateUV overwrites the cumulative unique-visitor count
func (r *ProjectRepository) UpdateUV(ctx context.Context, recordID string, uv int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET uv = ? WHERE record_id = ?`, uv, recordID)
	if err != nil {
		return fmt.Errorf("failed to update uv: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update uv: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project record %s: %w", recordID, repository.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner, proj *project.Project) error {
	return row.Scan(
		&proj.RecordID,
		&proj.ID,
		&proj.Name,
		&proj.Description,
		&proj.URL,
		&proj.Image,
		&proj.TeamName,
		&proj.TeamCode,
		&proj.SiteID,
		&proj.UV,
		&proj.Enabled,
	)
}
