package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/entitlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.PaymentRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_records (id, user_id, course_id, cm_id, section_id, amount, credited, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.CourseID,
		record.CMID,
		record.SectionID,
		record.Amount,
		record.Credited,
		record.CreatedAt,
	).Error
}

func (r *repo) SumCredited(ctx context.Context, db *gorm.DB, userID snowflake.ID, ref domain.ItemRef) (int64, error) {
	var total int64
	stmt := db.WithContext(ctx).
		Model(&domain.PaymentRecord{}).
		Select("COALESCE(SUM(credited), 0)").
		Where("user_id = ?", userID)
	if ref.IsModule() {
		stmt = stmt.Where("cm_id = ?", ref.CMID)
	} else {
		stmt = stmt.Where("section_id = ?", ref.SectionID)
	}
	if err := stmt.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
