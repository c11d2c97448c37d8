package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecell-kiet/recruitment-api/internal/models"
)

const candidateColumns = `id, name, email, personal_email, phone, year, library_id, branch, gender, course,
	why_ecell, what_motivates, linkedin, domains, domain_pref_one, domain_pref_two, group_number,
	is_present, is_hosteller, past_achievement, assigned_slot, screening, gd, pi, task, shortlisted,
	created_at, updated_at`

// CandidateRepository provides database access for candidate records.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository creates a new instance of CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// FindByEmail returns a candidate by normalized email address.
func (r *CandidateRepository) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE email = $1 LIMIT 1`, candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find candidate by email: %w", err)
	}
	return &candidate, nil
}

// FindByID returns a candidate by identifier.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id = $1 LIMIT 1`, candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find candidate by id: %w", err)
	}
	return &candidate, nil
}

// FindByGroup returns all candidates assigned to the given group number.
func (r *CandidateRepository) FindByGroup(ctx context.Context, groupNumber int) ([]models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE group_number = $1 ORDER BY email ASC`, candidateColumns)
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, groupNumber); err != nil {
		return nil, fmt.Errorf("find candidates by group: %w", err)
	}
	return candidates, nil
}

// MaxGroupNumber returns the highest assigned group number, or 0 when no
// candidate has a group yet.
func (r *CandidateRepository) MaxGroupNumber(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(MAX(group_number), 0) FROM candidates`
	var max int
	if err := r.db.GetContext(ctx, &max, query); err != nil {
		return 0, fmt.Errorf("max group number: %w", err)
	}
	return max, nil
}

// List returns candidates based on filters with total count.
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	baseQuery := `FROM candidates WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Shortlisted != nil {
		conditions = append(conditions, fmt.Sprintf("shortlisted = $%d", len(args)+1))
		args = append(args, *filter.Shortlisted)
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, *filter.Year)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", candidateColumns, baseQuery, pageSize, offset)

	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	return candidates, total, nil
}

// Create inserts a new candidate application.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now

	const query = `INSERT INTO candidates (id, name, email, personal_email, phone, year, library_id, branch, gender, course,
		why_ecell, what_motivates, linkedin, domains, domain_pref_one, domain_pref_two, group_number,
		is_present, is_hosteller, past_achievement, assigned_slot, screening, gd, pi, task, shortlisted, created_at, updated_at)
		VALUES (:id, :name, :email, :personal_email, :phone, :year, :library_id, :branch, :gender, :course,
		:why_ecell, :what_motivates, :linkedin, :domains, :domain_pref_one, :domain_pref_two, :group_number,
		:is_present, :is_hosteller, :past_achievement, :assigned_slot, :screening, :gd, :pi, :task, :shortlisted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a candidate.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET domains = :domains, group_number = :group_number, is_present = :is_present,
		assigned_slot = :assigned_slot, screening = :screening, gd = :gd, pi = :pi, task = :task,
		shortlisted = :shortlisted, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	return nil
}

// UpdateRounds persists only the scheduling outcome: group number plus the
// three round states. Used by the bulk scheduler so a run touches nothing
// else on the record.
func (r *CandidateRepository) UpdateRounds(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET group_number = :group_number, screening = :screening, gd = :gd, pi = :pi,
		updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("update candidate rounds: %w", err)
	}
	return nil
}
