package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServeFile returns a previously uploaded binary by its stored name. The
// name must be a bare filename; anything that smells like path traversal is
// answered exactly like a missing file.
func (h *Handler) ServeFile(c *fiber.Ctx) error {
	name := c.Params("filename")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	path := filepath.Join(h.Cfg.UploadDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	return c.SendFile(path)
}
