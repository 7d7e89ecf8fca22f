package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/opencampus/paygate/internal/condition"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
)

type accessQuery struct {
	CourseID  string `form:"course_id"`
	CMID      string `form:"cm_id"`
	SectionID string `form:"section_id"`
	Coupon    string `form:"coupon"`
	Invert    bool   `form:"invert"`
}

type accessResponse struct {
	Item          string           `json:"item"`
	DisplayName   string           `json:"display_name"`
	Status        condition.Status `json:"status"`
	Message       string           `json:"message"`
	Available     bool             `json:"available"`
	Cost          int64            `json:"cost"`
	EffectiveCost int64            `json:"effective_cost"`
	Balance       int64            `json:"balance"`
}

// GetAccess reports whether the caller can reach the referenced module or
// section, and if not, the restriction text to show in its place.
func (s *Server) GetAccess(c *gin.Context) {
	var query accessQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	courseID, err := parseID(query.CourseID)
	if err != nil {
		AbortWithError(c, newValidationError("course_id", "invalid_course_id", "invalid course_id"))
		return
	}

	ref, err := parseItemRef(query.CMID, query.SectionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.catalogSvc.ResolveItem(c.Request.Context(), courseID, ref)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// An item may carry several wallet conditions; the first governs what
	// the caller is asked to pay.
	var cost int64
	if costs := condition.WalletCosts(item.Availability()); len(costs) > 0 {
		cost = costs[0]
	}

	desc, err := s.describer.Describe(c.Request.Context(), condition.DescribeRequest{
		UserID:     userID,
		CourseID:   courseID,
		Item:       ref,
		Cost:       cost,
		CouponCode: strings.TrimSpace(query.Coupon),
		Invert:     query.Invert,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accessResponse{
		Item:          ref.String(),
		DisplayName:   item.DisplayName(),
		Status:        desc.Status,
		Message:       desc.Message,
		Available:     desc.Available,
		Cost:          desc.Cost,
		EffectiveCost: desc.EffectiveCost,
		Balance:       desc.Balance,
	}})
}

func parseID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, entitlementdomain.ErrInvalidItemRef
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, entitlementdomain.ErrInvalidItemRef
	}
	return id, nil
}

// parseItemRef builds a reference from the cm_id/section_id pair; exactly one
// must be set.
func parseItemRef(cmID, sectionID string) (entitlementdomain.ItemRef, error) {
	var ref entitlementdomain.ItemRef
	if strings.TrimSpace(cmID) != "" {
		id, err := parseID(cmID)
		if err != nil {
			return ref, newValidationError("cm_id", "invalid_cm_id", "invalid cm_id")
		}
		ref.CMID = id
	}
	if strings.TrimSpace(sectionID) != "" {
		id, err := parseID(sectionID)
		if err != nil {
			return ref, newValidationError("section_id", "invalid_section_id", "invalid section_id")
		}
		ref.SectionID = id
	}
	if err := ref.Validate(); err != nil {
		return ref, newValidationError("item", "invalid_item", "exactly one of cm_id or section_id is required")
	}
	return ref, nil
}
