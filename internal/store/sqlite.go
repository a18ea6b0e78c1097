package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
	id               TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	current_role     TEXT NOT NULL DEFAULT '',
	skills           TEXT NOT NULL DEFAULT '',
	years_experience TEXT NOT NULL DEFAULT '',
	education        TEXT NOT NULL DEFAULT '',
	last_company     TEXT NOT NULL DEFAULT '',
	resume_summary   TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'Available',
	score            REAL NOT NULL DEFAULT 0,
	matched_jobs     TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS jobs (
	id                  TEXT NOT NULL,
	title               TEXT NOT NULL DEFAULT '',
	department          TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL DEFAULT '',
	requirements        TEXT NOT NULL DEFAULT '',
	skills_required     TEXT NOT NULL DEFAULT '',
	experience_required TEXT NOT NULL DEFAULT '',
	education_required  TEXT NOT NULL DEFAULT '',
	salary_range        TEXT NOT NULL DEFAULT ''
)`,
}

// SQLite keeps both collections in one database file. Row order is insertion
// order, so a save followed by a load returns records as they were given.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite: path is not configured")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range sqliteSchema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) LoadCandidates(ctx context.Context) (*recruiting.Candidates, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates ORDER BY rowid", strings.Join(candidateColumns, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	defer rows.Close()

	candidates := &recruiting.Candidates{}
	for rows.Next() {
		var rec candidateRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Email, &rec.CurrentRole, &rec.Skills, &rec.YearsExperience,
			&rec.Education, &rec.LastCompany, &rec.ResumeSummary, &rec.Status, &rec.Score, &rec.MatchedJobs,
		); err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
		c, err := rec.toCandidate()
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
		candidates.Items = append(candidates.Items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return candidates, nil
}

func (s *SQLite) LoadJobs(ctx context.Context) (*recruiting.Jobs, error) {
	query := fmt.Sprintf("SELECT %s FROM jobs ORDER BY rowid", strings.Join(jobColumns, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	jobs := &recruiting.Jobs{}
	for rows.Next() {
		var rec jobRecord
		if err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Department, &rec.Location, &rec.Description,
			&rec.Requirements, &rec.SkillsRequired, &rec.ExperienceRequired,
			&rec.EducationRequired, &rec.SalaryRange,
		); err != nil {
			return nil, fmt.Errorf("load jobs: %w", err)
		}
		jobs.Items = append(jobs.Items, rec.toJob())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	return jobs, nil
}

func (s *SQLite) SaveCandidates(ctx context.Context, candidates *recruiting.Candidates) error {
	err := s.replace(ctx, "candidates", candidateColumns, func(stmt *sql.Stmt) error {
		for _, c := range candidates.Items {
			r := fromCandidate(c)
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.Name, r.Email, r.CurrentRole, r.Skills, r.YearsExperience,
				r.Education, r.LastCompany, r.ResumeSummary, r.Status, r.Score, r.MatchedJobs,
			); err != nil {
				return fmt.Errorf("candidate %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save candidates: %w", err)
	}
	return nil
}

func (s *SQLite) SaveJobs(ctx context.Context, jobs *recruiting.Jobs) error {
	err := s.replace(ctx, "jobs", jobColumns, func(stmt *sql.Stmt) error {
		for _, j := range jobs.Items {
			r := fromJob(j)
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.Title, r.Department, r.Location, r.Description, r.Requirements,
				r.SkillsRequired, r.ExperienceRequired, r.EducationRequired, r.SalaryRange,
			); err != nil {
				return fmt.Errorf("job %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save jobs: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// replace empties table and refills it through insert inside one transaction.
func (s *SQLite) replace(ctx context.Context, table string, columns []string, insert func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := insert(stmt); err != nil {
		return err
	}
	return tx.Commit()
}
