package http

import (
	"net/http"
	"strconv"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	postService service.PostService
	logger      *logger.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService service.PostService, logger *logger.Logger) *PostHandler {
	return &PostHandler{postService: postService, logger: logger}
}

// RegisterRoutes registers the post routes to the owner group.
func (h *PostHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/close", h.ClosePost)
}

// ClosePost godoc
// @Summary Close a post
// @Description Closes an open post. Closed posts are never evaluated again.
// @Tags posts
// @Produce  json
// @Param   owner_id  path  int  true  "Owner ID"
// @Param   post_id   path  int  true  "Post ID"
// @Success 200 {object} dto.PostResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/posts/{post_id}/close [post]
func (h *PostHandler) ClosePost(c echo.Context) error {
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid post ID"})
	}

	result, err := h.postService.ClosePost(c.Request().Context(), ownerID, uint(postID))
	if err != nil {
		return errorJSON(c, h.logger, "Failed to close post", err)
	}
	return c.JSON(http.StatusOK, result)
}
