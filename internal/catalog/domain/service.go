package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindCourse(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Course, error)
	FindModule(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CourseModule, error)
	FindSection(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CourseSection, error)
}

type Service interface {
	// ResolveItem loads the referenced module or section and verifies it
	// belongs to courseID.
	ResolveItem(ctx context.Context, courseID snowflake.ID, ref entitlementdomain.ItemRef) (Item, error)
}
