package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
)

type Course struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	FullName  string       `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Course) TableName() string { return "courses" }

type CourseModule struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	CourseID snowflake.ID `gorm:"not null;index"`
	Name     string       `gorm:"not null"`
	// Availability holds the serialized condition tree, or "" when the
	// module is unrestricted.
	Availability string
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CourseModule) TableName() string { return "course_modules" }

type CourseSection struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	CourseID     snowflake.ID `gorm:"not null;index"`
	Name         string       `gorm:"not null"`
	SectionNo    int          `gorm:"not null;default:0"`
	Availability string
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CourseSection) TableName() string { return "course_sections" }

// Item is a resolved gated item together with its course.
type Item struct {
	Course  Course
	Module  *CourseModule
	Section *CourseSection
}

func (i Item) Ref() entitlementdomain.ItemRef {
	if i.Module != nil {
		return entitlementdomain.NewModuleRef(i.Module.ID)
	}
	return entitlementdomain.NewSectionRef(i.Section.ID)
}

func (i Item) Availability() string {
	if i.Module != nil {
		return i.Module.Availability
	}
	return i.Section.Availability
}

// DisplayName renders "Course: Module(name)" or "Course: Section(name)",
// falling back to the section number for unnamed sections.
func (i Item) DisplayName() string {
	if i.Module != nil {
		return fmt.Sprintf("%s: Module(%s)", i.Course.FullName, i.Module.Name)
	}
	name := i.Section.Name
	if name == "" {
		name = fmt.Sprintf("%d", i.Section.SectionNo)
	}
	return fmt.Sprintf("%s: Section(%s)", i.Course.FullName, name)
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrCourseMismatch = errors.New("course_mismatch")
)
