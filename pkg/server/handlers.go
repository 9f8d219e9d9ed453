package server

import (
	"bytes"
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nodewee/ocr-hub/pkg/capture"
	"github.com/nodewee/ocr-hub/pkg/export"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// Recognitions outlive the request that started them and are never cancelled
var runCtx = context.Background()

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(newStateView(s.controller.State()))
}

// handleUpload takes the first file of the form and starts recognizing it
func (s *Server) handleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return s.rejectIntake(utils.NewValidationError("no file provided", err))
	}

	file, err := capture.FromMultipart(form, capture.SourceFromForm(form))
	if err != nil {
		return s.rejectIntake(err)
	}
	if err := s.controller.SubmitAsync(runCtx, file); err != nil {
		return s.rejectIntake(err)
	}

	s.logger.Debug("Accepted %s (%s, %d bytes) from %s", file.Name, file.MIMEType, file.Size, file.Source)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "processing",
		"file":   newFileView(file),
	})
}

type editTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditText(c *fiber.Ctx) error {
	var req editTextRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.NewValidationError("invalid request body", err)
	}
	s.controller.EditText(req.Text)

	chars, words := export.Stats(req.Text)
	return c.JSON(fiber.Map{"chars": chars, "words": words})
}

func (s *Server) handleCopy(c *fiber.Ctx) error {
	if err := s.controller.CopyCurrent(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"copied": true})
}

func (s *Server) handleHistoryCopy(c *fiber.Ctx) error {
	id, err := historyID(c)
	if err != nil {
		return err
	}
	if err := s.controller.CopyHistory(id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"copied": true})
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	name, text := s.controller.CurrentDownload()
	return s.sendText(c, name, text)
}

func (s *Server) handleHistoryDownload(c *fiber.Ctx) error {
	id, err := historyID(c)
	if err != nil {
		return err
	}
	name, text, err := s.controller.HistoryDownload(id)
	if err != nil {
		return err
	}
	return s.sendText(c, name, text)
}

// sendText answers with text as an attachment named name
func (s *Server) sendText(c *fiber.Ctx, name, text string) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return s.controller.DownloadText(c, text)
}

func (s *Server) handleHistoryMarkdown(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := export.HistoryMarkdown(&buf, s.controller.State().History.Entries()); err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "failed to render history")
	}
	c.Attachment("history.md")
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleCameraStart(c *fiber.Ctx) error {
	if err := s.controller.StartCamera(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"camera_active": true})
}

func (s *Server) handleCameraPreview(c *fiber.Ctx) error {
	frame, err := s.controller.CameraPreview(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(frame)
}

func (s *Server) handleCameraCapture(c *fiber.Ctx) error {
	if err := s.controller.CaptureFromCameraAsync(runCtx); err != nil {
		return s.rejectIntake(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "processing"})
}

func (s *Server) handleCameraStop(c *fiber.Ctx) error {
	if err := s.controller.StopCamera(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"camera_active": false})
}

// rejectIntake shows a refused capture on the page before answering with err.
// Camera failures are already announced by the controller.
func (s *Server) rejectIntake(err error) error {
	switch utils.GetErrorType(err) {
	case utils.ErrorTypeValidation, utils.ErrorTypeUnsupported, utils.ErrorTypeBusy:
		s.controller.Notify(types.NotificationError, utils.UserMessage(err))
	}
	return err
}

func historyID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, utils.NewValidationError("invalid history id", err)
	}
	return id, nil
}
