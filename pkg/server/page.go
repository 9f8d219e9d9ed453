package server

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/index.html
var templates embed.FS

func parsePage() (*template.Template, error) {
	return template.ParseFS(templates, "templates/index.html")
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(s.controller.State())); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
