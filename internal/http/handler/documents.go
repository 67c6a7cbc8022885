package handler

import (
	"github.com/gofiber/fiber/v2"

	"dms/internal/http/middleware"
	"dms/internal/service"
)

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Access  string `json:"access"`
}

// ListUserDocuments returns the documents of a user visible to the requester.
//
// @Summary   List a user's documents
// @Tags      documents
// @Security  BearerAuth
// @Param     id path int true "owner id"
// @Success   200 {array} model.Document
// @Failure   400,401,404 {object} errorPayload
// @Router    /users/{id}/documents [get]
func ListUserDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		docs, err := svc.ListByOwner(c.UserContext(), middleware.PrincipalFromCtx(c), ownerID)
		if err != nil {
			return writeServiceError(c, err, "no data")
		}
		return c.JSON(docs)
	}
}

// CreateDocument stores a new document owned by the requester.
//
// @Summary   Create document
// @Tags      documents
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body body createDocumentRequest true "document"
// @Success   201 {object} model.Document
// @Failure   400,401,404 {object} errorPayload
// @Router    /documents [post]
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := svc.Create(c.UserContext(), middleware.PrincipalFromCtx(c), service.NewDocument{
			Title:   req.Title,
			Content: req.Content,
			Access:  req.Access,
		})
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns a document with its content.
//
// @Summary   Get document
// @Tags      documents
// @Security  BearerAuth
// @Param     id path int true "document id"
// @Success   200 {object} model.Document
// @Failure   400,401,403,404 {object} errorPayload
// @Router    /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), middleware.PrincipalFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err, "document not found")
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document from storage and the database.
//
// @Summary   Delete document
// @Tags      documents
// @Security  BearerAuth
// @Param     id path int true "document id"
// @Success   200 {object} messageResponse
// @Failure   400,401,403,404 {object} errorPayload
// @Router    /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.PrincipalFromCtx(c), id); err != nil {
			return writeServiceError(c, err, "document not found")
		}
		return c.JSON(messageResponse{Success: true, Message: "document deleted"})
	}
}
