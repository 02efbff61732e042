package http

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
)

// uploadField is the multipart field carrying uploaded files.
const uploadField = "files"

type documentHandler struct {
	copilot driving.CopilotService
}

func (h *documentHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/documents")
	g.Get("", h.List)
	g.Post("", h.Upload)
	g.Get("/:id", h.Show)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/analysis", h.Analyze)
}

func (h *documentHandler) List(c *fiber.Ctx) error {
	docs, err := h.copilot.ListDocuments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success list documents", toDocumentDTOs(docs)))
}

func (h *documentHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: expected multipart form with %q files: %v", domain.ErrInvalidInput, uploadField, err)
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return fmt.Errorf("%w: no files in field %q", domain.ErrInvalidInput, uploadField)
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		files = append(files, domain.UploadFile{Filename: fh.Filename, Data: data})
	}

	docs, err := h.copilot.Upload(c.UserContext(), files)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(successResponse("Success upload documents", toDocumentDTOs(docs)))
}

func (h *documentHandler) Show(c *fiber.Ctx) error {
	doc, err := h.copilot.GetDocument(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	dto := toDocumentDTO(doc)
	if c.QueryBool("content") {
		dto.Content = doc.Content
	}
	return c.JSON(successResponse("Success show document", dto))
}

func (h *documentHandler) Delete(c *fiber.Ctx) error {
	if err := h.copilot.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(successResponse[any]("Success delete document", nil))
}

func (h *documentHandler) Analyze(c *fiber.Ctx) error {
	analysis, err := h.copilot.Analyze(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success analyze document", analysis))
}

type chatHandler struct {
	copilot driving.CopilotService
}

func (h *chatHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/ask", h.Ask)
	r.Get("/summary", h.Summary)
	r.Get("/comparison", h.Comparison)
	r.Get("/insights", h.Insights)
}

func (h *chatHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	answer, err := h.copilot.Ask(c.UserContext(), req.SessionID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success ask", answer))
}

func (h *chatHandler) Summary(c *fiber.Ctx) error {
	q, err := sessionQuery(c)
	if err != nil {
		return err
	}
	answer, err := h.copilot.GetSummary(c.UserContext(), q.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success summarize", answer))
}

func (h *chatHandler) Comparison(c *fiber.Ctx) error {
	q, err := sessionQuery(c)
	if err != nil {
		return err
	}
	report, err := h.copilot.GetComparison(c.UserContext(), q.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success compare", report))
}

func (h *chatHandler) Insights(c *fiber.Ctx) error {
	insights, err := h.copilot.GetInsights(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success insights", insights))
}

type sessionHandler struct {
	sessions driving.SessionService
}

func (h *sessionHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/sessions")
	g.Post("", h.Create)
	g.Get("/:id", h.Show)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/history", h.History)
	g.Delete("/:id/history", h.Clear)
	g.Put("/:id/scope", h.Scope)
}

func (h *sessionHandler) Create(c *fiber.Ctx) error {
	info, err := h.sessions.Create(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(successResponse("Success create session", info))
}

func (h *sessionHandler) Show(c *fiber.Ctx) error {
	info, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success show session", info))
}

func (h *sessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(successResponse[any]("Success delete session", nil))
}

func (h *sessionHandler) History(c *fiber.Ctx) error {
	turns, err := h.sessions.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success get history", toTurnDTOs(turns)))
}

func (h *sessionHandler) Clear(c *fiber.Ctx) error {
	if err := h.sessions.ClearConversation(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(successResponse[any]("Success clear conversation", nil))
}

func (h *sessionHandler) Scope(c *fiber.Ctx) error {
	var req ScopeRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	var ids []string
	if len(req.DocumentIDs) > 0 {
		ids = req.DocumentIDs
	}
	id := c.Params("id")
	if err := h.sessions.Scope(c.UserContext(), id, ids); err != nil {
		return err
	}

	info, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(successResponse("Success scope session", info))
}

func sessionQuery(c *fiber.Ctx) (SessionQuery, error) {
	var q SessionQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return q, validateRequest(q)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
