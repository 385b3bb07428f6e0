package server

import (
	"io"

	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostBody struct {
	Content string `json:"content"`
}

// CreatePost handles POST /api/posts. It accepts either a multipart form with
// a "content" field and up to ten "images" files, or a plain JSON body.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var (
		content     string
		attachments []service.Attachment
	)

	if form, err := c.MultipartForm(); err == nil && form != nil {
		if vals := form.Value["content"]; len(vals) > 0 {
			content = vals[0]
		}
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read uploaded file"))
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read uploaded file"))
			}
			attachments = append(attachments, service.Attachment{
				Filename: fh.Filename,
				Content:  data,
			})
		}
	} else {
		var body createPostBody
		if err := c.BodyParser(&body); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		content = body.Content
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:    currentUserID(c),
		Content:     content,
		Attachments: attachments,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts with page/size query params.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.postService.ListFeed(c.Context(), service.ListFeedInput{
		ViewerID: currentUserID(c),
		Page:     c.QueryInt("page", 0),
		Size:     c.QueryInt("size", service.DefaultPageSize),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	post, err := s.postService.GetPost(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// ToggleLike handles POST /api/posts/:id/like. Liking an already-liked post
// removes the like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	result, err := s.postService.ToggleLike(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// DeleteAllPosts handles DELETE /api/posts/all.
func (s *Server) DeleteAllPosts(c *fiber.Ctx) error {
	result, err := s.postService.DeleteAll(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// CleanupOrphans handles DELETE /api/posts/cleanup-orphans, removing posts
// whose author no longer exists.
func (s *Server) CleanupOrphans(c *fiber.Ctx) error {
	result, err := s.postService.CleanupOrphans(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
