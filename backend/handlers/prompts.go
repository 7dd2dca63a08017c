package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptlab/promptlab/backend/models"
)

// parseListQuery reads the combined filter parameters. tag_ids accepts both
// repeated parameters and comma-separated values; match_all defaults to true.
func parseListQuery(c *gin.Context) (models.ListPromptsQuery, error) {
	q := models.ListPromptsQuery{
		CollectionID: c.Query("collection_id"),
		Search:       c.Query("search"),
		MatchAll:     true,
	}

	for _, raw := range c.QueryArray("tag_ids") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.TagIDs = append(q.TagIDs, id)
			}
		}
	}

	if v := c.Query("match_all"); v != "" {
		matchAll, err := strconv.ParseBool(v)
		if err != nil {
			return q, err
		}
		q.MatchAll = matchAll
	}

	var err error
	if q.Limit, q.Offset, err = parsePagination(c); err != nil {
		return q, err
	}
	return q, nil
}

func parsePagination(c *gin.Context) (limit, offset int, err error) {
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	return limit, offset, nil
}

func (h *Handler) handleListPrompts(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.badRequest(c, "invalid query parameter: "+err.Error())
		return
	}

	prompts, total := h.Store.ListPrompts(q)
	c.JSON(http.StatusOK, models.PromptList{
		Prompts: prompts,
		Total:   total,
	})
}

func (h *Handler) handleCreatePrompt(c *gin.Context) {
	var input models.CreatePromptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.Store.CreatePrompt(input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	promptsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) handleGetPrompt(c *gin.Context) {
	p, err := h.Store.GetPrompt(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleReplacePrompt(c *gin.Context) {
	var input models.UpdatePromptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.Store.ReplacePrompt(c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if input.CreateVersion {
		promptVersionsCreatedTotal.Inc()
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handlePatchPrompt(c *gin.Context) {
	var patch models.PromptPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.Store.PatchPrompt(c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if patch.CreateVersion {
		promptVersionsCreatedTotal.Inc()
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleDeletePrompt(c *gin.Context) {
	if err := h.Store.DeletePrompt(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
