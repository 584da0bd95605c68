package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/models"
)

// findByHash resolves the public approval capability. An unknown hash and a
// nonexistent campaign are the same thing to the caller: not found.
func (h *Handler) findByHash(hash string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := h.DB.Where("approval_hash = ?", hash).First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ApprovalView is the public read side of the approval link: the campaign
// and all its pieces, no authentication.
func (h *Handler) ApprovalView(c *fiber.Ctx) error {
	campaign, err := h.findByHash(c.Params("hash"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invalid link"})
		}
		return err
	}

	var pieces []models.Piece
	if err := h.DB.Where("campaign_id = ?", campaign.ID).Order("id").Find(&pieces).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"campaign": campaign, "pieces": pieces})
}

// SubmitApproval overwrites status and comment for each matched piece.
// Pieces are matched by (id, campaign) — ids belonging to other campaigns or
// to nothing at all are skipped, not erred. The ack lists which was which.
func (h *Handler) SubmitApproval(c *fiber.Ctx) error {
	type pieceFeedback struct {
		ID      uint   `json:"id"`
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	type feedbackInput struct {
		Pieces []pieceFeedback `json:"pieces"`
	}

	campaign, err := h.findByHash(c.Params("hash"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invalid link"})
		}
		return err
	}

	input := new(feedbackInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Reject unknown statuses up front; nothing is written on a bad batch.
	for _, p := range input.Pieces {
		if !models.ValidStatus(p.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid status %q", p.Status),
			})
		}
	}

	applied := make([]uint, 0, len(input.Pieces))
	skipped := make([]uint, 0)
	for _, p := range input.Pieces {
		res := h.DB.Model(&models.Piece{}).
			Where("id = ? AND campaign_id = ?", p.ID, campaign.ID).
			Updates(map[string]interface{}{"status": p.Status, "comment": p.Comment})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			skipped = append(skipped, p.ID)
			continue
		}
		applied = append(applied, p.ID)
	}

	return c.JSON(fiber.Map{
		"message": "Feedback recorded",
		"applied": applied,
		"skipped": skipped,
	})
}
