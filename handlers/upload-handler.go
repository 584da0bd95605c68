package handler

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/models"
)

// UploadPieces stores each uploaded file under a generated name in the upload
// directory and records a pending Piece per file. The campaign is resolved
// before any file is written, so an unknown id leaves no orphans on disk.
func (h *Handler) UploadPieces(c *fiber.Ctx) error {
	// the id is parsed before it gets anywhere near the query; a
	// non-numeric id can never name a campaign
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
	}

	var campaign models.Campaign
	if err := h.DB.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid multipart form"})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no files provided"})
	}

	pieces := make([]models.Piece, 0, len(files))
	for _, file := range files {
		storedName := uuid.NewString() + filepath.Ext(file.Filename)
		if err := c.SaveFile(file, filepath.Join(h.Cfg.UploadDir, storedName)); err != nil {
			log.Printf("upload: campaign %d batch aborted after %d of %d files: %v", campaign.ID, len(pieces), len(files), err)
			return err
		}

		piece := models.Piece{
			Filename:   storedName,
			Mimetype:   file.Header.Get("Content-Type"),
			Status:     models.StatusPending,
			CampaignID: campaign.ID,
		}
		if err := h.DB.Create(&piece).Error; err != nil {
			log.Printf("upload: campaign %d batch aborted after %d of %d files: %v", campaign.ID, len(pieces), len(files), err)
			return err
		}
		pieces = append(pieces, piece)
	}

	return c.JSON(pieces)
}
