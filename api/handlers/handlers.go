package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"legacy-migrator/config"
	"legacy-migrator/dto"
	"legacy-migrator/services"
)

const msgInvalidPostID = "Invalid post ID."

// DashboardHandler godoc
// @Summary      Migration dashboard
// @Description  Stats over all legacy records, a filtered and paginated row list and the newest log entries
// @Tags         migration
// @Param        filter    query  string  false  "Status filter (all, pending, migrated, failed, skipped, dry-run)"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        per_page  query  int     false  "Page size (<=100)"
// @Param        search    query  string  false  "Title substring or exact post id"
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /migration/dashboard [get]
func DashboardHandler(svc *services.MigrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q services.DashboardQuery
		q.Filter = c.DefaultQuery("filter", "all")
		q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		q.PerPage, _ = strconv.Atoi(c.Query("per_page"))
		q.Search = c.Query("search")

		payload, err := svc.GetDashboardPayload(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

// RunBulkHandler godoc
// @Summary      Run bulk migration
// @Description  Attempt every legacy record in ascending id order
// @Tags         migration
// @Accept       json
// @Param        body  body  dto.RunBulkRequestDTO  false  "Run options"
// @Produce      json
// @Success      200  {object}  dto.RunResultDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /migration/runs/bulk [post]
func RunBulkHandler(svc *services.MigrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RunBulkRequestDTO
		if !bindOptional(c, &req) {
			return
		}
		res, err := svc.RunBulk(context.WithoutCancel(c.Request.Context()), req.Force, req.DryRun)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// RunChunkHandler godoc
// @Summary      Run chunk migration
// @Description  Migrate up to limit records that are not migrated yet (limit clamped to 1..200)
// @Tags         migration
// @Accept       json
// @Param        body  body  dto.RunChunkRequestDTO  false  "Run options"
// @Produce      json
// @Success      200  {object}  dto.RunResultDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /migration/runs/chunk [post]
func RunChunkHandler(svc *services.MigrationService, defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := dto.RunChunkRequestDTO{Limit: defaultLimit}
		if !bindOptional(c, &req) {
			return
		}
		res, err := svc.RunChunk(context.WithoutCancel(c.Request.Context()), req.Limit, req.Force, req.DryRun)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// RunSingleHandler godoc
// @Summary      Run single migration
// @Tags         migration
// @Accept       json
// @Param        body  body  dto.RunSingleRequestDTO  true  "Record and run options"
// @Produce      json
// @Success      200  {object}  dto.RunResultDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /migration/runs/single [post]
func RunSingleHandler(svc *services.MigrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RunSingleRequestDTO
		if !bindOptional(c, &req) {
			return
		}
		if req.PostID <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: msgInvalidPostID})
			return
		}
		res, err := svc.RunSingle(context.WithoutCancel(c.Request.Context()), req.PostID, req.Force, req.DryRun)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// PreviewHandler godoc
// @Summary      Preview mapping
// @Description  Parse one record and show the fields and new image filenames a migration would write
// @Tags         migration
// @Param        id   path  int  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.PreviewDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /migration/posts/{id}/preview [get]
func PreviewHandler(svc *services.MigrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postIDParam(c)
		if !ok {
			return
		}
		out, err := svc.PreviewMapping(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// SavedFieldsHandler godoc
// @Summary      Saved enhanced fields
// @Tags         migration
// @Param        id   path  int  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.SavedFieldsDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /migration/posts/{id}/fields [get]
func SavedFieldsHandler(svc *services.MigrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := postIDParam(c)
		if !ok {
			return
		}
		out, err := svc.GetMigratedFields(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func postIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: msgInvalidPostID})
		return 0, false
	}
	return id, true
}

// bindOptional 은 바디가 있을 때만 JSON 을 바인딩한다. 빈 바디는 기본값으로 처리한다.
func bindOptional(c *gin.Context, out any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	// chunked 요청은 ContentLength 가 -1 이라 빈 바디가 EOF 로 온다
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid request body"})
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrRunInProgress) {
		c.JSON(http.StatusConflict, dto.ErrorResponseDTO{Error: err.Error()})
		return
	}
	config.ErrorWithFields("migration request failed", config.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
}
