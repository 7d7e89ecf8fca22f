package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCourse(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Course, error) {
	var course domain.Course
	err := db.WithContext(ctx).Raw(
		`SELECT id, full_name, created_at FROM courses WHERE id = ?`, id,
	).Scan(&course).Error
	if err != nil {
		return nil, err
	}
	if course.ID == 0 {
		return nil, nil
	}
	return &course, nil
}

func (r *repo) FindModule(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CourseModule, error) {
	var module domain.CourseModule
	err := db.WithContext(ctx).Raw(
		`SELECT id, course_id, name, availability, created_at FROM course_modules WHERE id = ?`, id,
	).Scan(&module).Error
	if err != nil {
		return nil, err
	}
	if module.ID == 0 {
		return nil, nil
	}
	return &module, nil
}

func (r *repo) FindSection(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CourseSection, error) {
	var section domain.CourseSection
	err := db.WithContext(ctx).Raw(
		`SELECT id, course_id, name, section_no, availability, created_at FROM course_sections WHERE id = ?`, id,
	).Scan(&section).Error
	if err != nil {
		return nil, err
	}
	if section.ID == 0 {
		return nil, nil
	}
	return &section, nil
}
