package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ItemRef identifies the gated item: exactly one of a course module or a
// course section.
type ItemRef struct {
	CMID      snowflake.ID
	SectionID snowflake.ID
}

func NewModuleRef(cmID snowflake.ID) ItemRef {
	return ItemRef{CMID: cmID}
}

func NewSectionRef(sectionID snowflake.ID) ItemRef {
	return ItemRef{SectionID: sectionID}
}

func (r ItemRef) Validate() error {
	if (r.CMID == 0) == (r.SectionID == 0) {
		return ErrInvalidItemRef
	}
	return nil
}

func (r ItemRef) IsModule() bool { return r.CMID != 0 }

func (r ItemRef) String() string {
	if r.IsModule() {
		return fmt.Sprintf("cm:%d", r.CMID)
	}
	return fmt.Sprintf("section:%d", r.SectionID)
}

// PaymentRecord is one successful payment for an item. Rows are append-only:
// nothing in this service updates or deletes them.
type PaymentRecord struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	UserID   snowflake.ID `gorm:"not null;index"`
	CourseID snowflake.ID `gorm:"not null"`
	// Exactly one of CMID / SectionID is set.
	CMID      *snowflake.ID `gorm:"column:cm_id"`
	SectionID *snowflake.ID `gorm:"column:section_id"`
	// Amount is what was actually charged, post-discount.
	Amount int64 `gorm:"not null"`
	// Credited is the value the row counts toward the availability threshold.
	// Equal to Amount unless a coupon discounted the charge, in which case it
	// carries the full required cost the payment satisfied.
	Credited  int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (PaymentRecord) TableName() string { return "payment_records" }

func (p *PaymentRecord) Item() ItemRef {
	ref := ItemRef{}
	if p.CMID != nil {
		ref.CMID = *p.CMID
	}
	if p.SectionID != nil {
		ref.SectionID = *p.SectionID
	}
	return ref
}

var (
	ErrInvalidItemRef = errors.New("invalid_item_ref")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidAmount  = errors.New("invalid_amount")
)
