package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptlab/promptlab/backend/models"
)

func (h *Handler) handleListTags(c *gin.Context) {
	tags := h.Store.ListTags()
	c.JSON(http.StatusOK, models.TagList{
		Tags:  tags,
		Total: len(tags),
	})
}

func (h *Handler) handleCreateTag(c *gin.Context) {
	var input models.CreateTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	tag, err := h.Store.CreateTag(input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Handler) handleGetTag(c *gin.Context) {
	tag, err := h.Store.GetTag(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) handlePatchTag(c *gin.Context) {
	var patch models.TagPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	tag, err := h.Store.PatchTag(c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) handleDeleteTag(c *gin.Context) {
	if err := h.Store.DeleteTag(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handlePromptsByTag(c *gin.Context) {
	prompts, err := h.Store.PromptsByTag(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PromptList{
		Prompts: prompts,
		Total:   len(prompts),
	})
}

func (h *Handler) handleSetPromptTags(c *gin.Context) {
	var input models.SetPromptTagsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.Store.SetPromptTags(c.Param("id"), input.TagIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleAddPromptTag(c *gin.Context) {
	p, err := h.Store.AddPromptTag(c.Param("id"), c.Param("tagId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleRemovePromptTag(c *gin.Context) {
	// Removing a tag the prompt does not carry is still a 204.
	if _, _, err := h.Store.RemovePromptTag(c.Param("id"), c.Param("tagId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
