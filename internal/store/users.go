// Package store persists user documents in Postgres. Progress writes are
// guarded by an optimistic version check so two concurrent completions for
// the same user can never both land on the same snapshot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	model "github.com/rishika105/CodeShield-AI/internal/models"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrDuplicateUser   = errors.New("user already exists with this email or username")
	ErrVersionConflict = errors.New("user record was modified concurrently")
)

type UserStore struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user row with zeroed progress state.
func (s *UserStore) Create(ctx context.Context, u *model.UserProfile) error {
	questsJSON, err := json.Marshal(u.Quests)
	if err != nil {
		return fmt.Errorf("could not encode quest progress: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, security_score, badges, role, scan_count, quests)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING version, created_at, updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.SecurityScore, u.Badges, u.Role, u.ScanCount, questsJSON,
	).Scan(&u.Version, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUser
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, security_score, badges, role,
	scan_count, last_scan_date, quests, version, created_at, updated_at`

// GetByID loads a user by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail loads a user by email, used by login.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// SaveProgress writes the mutable gamification fields back, conditional on
// the version the caller read. Returns ErrVersionConflict if another writer
// got there first; the caller reloads and recomputes.
func (s *UserStore) SaveProgress(ctx context.Context, u *model.UserProfile) error {
	questsJSON, err := json.Marshal(u.Quests)
	if err != nil {
		return fmt.Errorf("could not encode quest progress: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users
		 SET quests = $1, security_score = $2, badges = $3, scan_count = $4,
		     last_scan_date = $5, version = version + 1, updated_at = NOW()
		 WHERE id = $6 AND version = $7`,
		questsJSON, u.SecurityScore, u.Badges, u.ScanCount, u.LastScanDate, u.ID, u.Version,
	)
	if err != nil {
		return fmt.Errorf("could not save progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	u.Version++
	return nil
}

// Leaderboard returns the top users by security score, total XP breaking
// ties. Remaining ties are left in arbitrary order.
func (s *UserStore) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, username, security_score, badges,
		        COALESCE((quests->>'totalXP')::int, 0) AS total_xp,
		        COALESCE((quests->>'maxStreak')::int, 0) AS max_streak
		 FROM users
		 ORDER BY security_score DESC, total_xp DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.SecurityScore, &e.Badges, &e.TotalXP, &e.MaxStreak); err != nil {
			return nil, fmt.Errorf("could not scan leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates the numbers shown on the admin dashboard.
func (s *UserStore) Stats(ctx context.Context) (model.AdminStats, error) {
	var stats model.AdminStats
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(jsonb_array_length(quests->'completedQuests')), 0),
		        COALESCE(AVG(security_score), 0)
		 FROM users`,
	).Scan(&stats.TotalUsers, &stats.TotalCompletions, &stats.AvgSecurityScore)
	if err != nil {
		return stats, fmt.Errorf("could not query stats: %w", err)
	}
	stats.GeneratedAt = time.Now()
	return stats, nil
}

func scanUser(row pgx.Row) (*model.UserProfile, error) {
	var u model.UserProfile
	var questsJSON []byte
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.SecurityScore, &u.Badges,
		&u.Role, &u.ScanCount, &u.LastScanDate, &questsJSON, &u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not scan user: %w", err)
	}
	if err := json.Unmarshal(questsJSON, &u.Quests); err != nil {
		return nil, fmt.Errorf("could not decode quest progress: %w", err)
	}
	return &u, nil
}
