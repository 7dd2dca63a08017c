package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptlab/promptlab/backend/models"
)

func (h *Handler) handleListVersions(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		h.badRequest(c, "invalid query parameter: "+err.Error())
		return
	}

	versions, total, err := h.Store.ListVersions(c.Param("id"), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.VersionList{
		Versions: versions,
		Total:    total,
	})
}

func (h *Handler) handleCreateVersion(c *gin.Context) {
	// The body is optional; an empty body creates an unannotated snapshot.
	var input models.CreateVersionInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	v, err := h.Store.CreateVersion(c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	promptVersionsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) handleGetVersion(c *gin.Context) {
	v, err := h.Store.GetVersion(c.Param("id"), c.Param("versionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) handleDeleteVersion(c *gin.Context) {
	if err := h.Store.DeleteVersion(c.Param("id"), c.Param("versionId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleRestoreVersion(c *gin.Context) {
	var input models.RestoreVersionInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	// Restoring snapshots the current state first unless explicitly disabled.
	createVersion := input.CreateVersion == nil || *input.CreateVersion

	p, err := h.Store.RestoreVersion(c.Param("id"), c.Param("versionId"), createVersion)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if createVersion {
		promptVersionsCreatedTotal.Inc()
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) handleCompareVersions(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		h.badRequest(c, "both 'from' and 'to' version ids are required")
		return
	}

	diff, err := h.Store.CompareVersions(c.Param("id"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, diff)
}
