package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/opencampus/paygate/internal/settlement/domain"
)

type payRequest struct {
	CourseID     string `json:"course_id"`
	CMID         string `json:"cm_id"`
	SectionID    string `json:"section_id"`
	Cost         int64  `json:"cost"`
	Coupon       string `json:"coupon"`
	Confirmation string `json:"confirmation"`
}

type payResponse struct {
	SettlementID string `json:"settlement_id"`
	RecordID     string `json:"record_id"`
	Amount       int64  `json:"amount"`
	Message      string `json:"message"`
}

// IssueConfirmation hands out the one-time token a client must present with
// its pay request. Tokens expire and each one settles at most once.
func (s *Server) IssueConfirmation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	token, err := s.confirmStore.Issue(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"confirmation": token}})
}

// Pay settles one purchase: it consumes the confirmation token, then records
// the payment and debits the wallet.
func (s *Server) Pay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	courseID, err := parseID(req.CourseID)
	if err != nil {
		AbortWithError(c, newValidationError("course_id", "invalid_course_id", "invalid course_id"))
		return
	}

	ref, err := parseItemRef(req.CMID, req.SectionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	confirmed, err := s.confirmStore.Consume(c.Request.Context(), userID, strings.TrimSpace(req.Confirmation))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !confirmed {
		AbortWithError(c, settlementdomain.ErrMissingConfirmation)
		return
	}

	result, err := s.settlementSvc.Settle(c.Request.Context(), settlementdomain.SettleRequest{
		UserID:         userID,
		CourseID:       courseID,
		Item:           ref,
		ClaimedCost:    req.Cost,
		CouponCode:     strings.TrimSpace(req.Coupon),
		ActorConfirmed: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": payResponse{
		SettlementID: result.SettlementID.String(),
		RecordID:     result.RecordID.String(),
		Amount:       result.Amount,
		Message:      result.Message,
	}})
}
