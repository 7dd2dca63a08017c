package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptlab/promptlab/backend/models"
)

func (h *Handler) handleListCollections(c *gin.Context) {
	collections := h.Store.ListCollections()
	c.JSON(http.StatusOK, models.CollectionList{
		Collections: collections,
		Total:       len(collections),
	})
}

func (h *Handler) handleCreateCollection(c *gin.Context) {
	var input models.CreateCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	col, err := h.Store.CreateCollection(input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

func (h *Handler) handleGetCollection(c *gin.Context) {
	col, err := h.Store.GetCollection(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (h *Handler) handleDeleteCollection(c *gin.Context) {
	if err := h.Store.DeleteCollection(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleCollectionPrompts(c *gin.Context) {
	prompts, err := h.Store.PromptsByCollection(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PromptList{
		Prompts: prompts,
		Total:   len(prompts),
	})
}
