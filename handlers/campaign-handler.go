package handler

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aprobi/aprobi/middleware"
	"github.com/aprobi/aprobi/models"
)

// CreateCampaign persists a new campaign with a fresh approval hash. Name and
// client are required; the rest is optional.
func (h *Handler) CreateCampaign(c *fiber.Ctx) error {
	type campaignInput struct {
		Name         string     `json:"name"`
		Client       string     `json:"client"`
		CreativeLine string     `json:"creativeLine"`
		StartDate    *time.Time `json:"startDate"`
		EndDate      *time.Time `json:"endDate"`
	}

	input := new(campaignInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Client = strings.TrimSpace(input.Client)
	if input.Name == "" || input.Client == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and client are required"})
	}

	hash, err := models.NewApprovalHash()
	if err != nil {
		return err
	}

	campaign := models.Campaign{
		Name:         input.Name,
		Client:       input.Client,
		CreativeLine: input.CreativeLine,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ApprovalHash: hash,
	}
	if err := h.DB.Create(&campaign).Error; err != nil {
		return err
	}

	if p, ok := middleware.GetPrincipal(c); ok {
		log.Printf("campaigns: %q created by %s", campaign.Name, p.Username)
	}

	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// ListCampaigns returns every campaign, newest first. Authorization is flat:
// any authenticated user sees all of them.
func (h *Handler) ListCampaigns(c *fiber.Ctx) error {
	var campaigns []models.Campaign
	if err := h.DB.Order("created_at DESC, id DESC").Find(&campaigns).Error; err != nil {
		log.Printf("campaigns: list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch campaigns"})
	}

	return c.JSON(campaigns)
}
