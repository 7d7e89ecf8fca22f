package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/settlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, attempt *domain.SettlementAttempt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO settlement_attempts
		 (id, user_id, course_id, cm_id, section_id, required_cost, amount, status, failure, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.UserID,
		attempt.CourseID,
		attempt.CMID,
		attempt.SectionID,
		attempt.RequiredCost,
		attempt.Amount,
		string(attempt.Status),
		attempt.Failure,
		attempt.Metadata,
		attempt.CreatedAt,
		attempt.UpdatedAt,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.AttemptStatus, failure string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE settlement_attempts
		 SET status = ?, failure = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(status),
		failure,
		id,
	).Error
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status domain.AttemptStatus, limit int) ([]*domain.SettlementAttempt, error) {
	var attempts []*domain.SettlementAttempt
	stmt := db.WithContext(ctx).
		Model(&domain.SettlementAttempt{}).
		Where("status = ?", string(status)).
		Order("created_at asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
