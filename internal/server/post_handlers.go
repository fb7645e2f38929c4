package server

import (
	"errors"
	"strconv"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// listPageSize caps the public post listing.
const listPageSize = 20

// CreatePost handles POST /post (multipart form: title, summary, content,
// optional file). The author is always the session identity; any author
// field in the request body is ignored.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	title := c.FormValue("title")
	summary := c.FormValue("summary")
	content := c.FormValue("content")

	if title == "" || content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	post := &models.Post{
		Title:    title,
		Summary:  summary,
		Content:  content,
		AuthorID: userID,
	}

	// Cover is optional; when absent the post is created without one.
	if file, err := c.FormFile("file"); err == nil && file != nil {
		cover, err := s.uploads.SaveCover(file)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		post.Cover = cover
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload with the author resolved for the response
	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(ctx, cache.RecentPostsKey)

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdatePost handles PUT /post (multipart form: id, title, summary, content,
// optional file). Only the post's author may update it.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := strconv.ParseUint(c.FormValue("id"), 10, 32)
	if err != nil || id == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	title := c.FormValue("title")
	summary := c.FormValue("summary")
	content := c.FormValue("content")

	if title == "" || content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	post, err := s.postRepo.GetByID(ctx, uint(id))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	// Ownership gate: compare canonical IDs, not serialized forms
	if post.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not the author of this post"))
	}

	post.Title = title
	post.Summary = summary
	post.Content = content

	// A new cover replaces the old filename; without one the existing
	// cover is left untouched. The old file is not removed from disk.
	if file, ferr := c.FormFile("file"); ferr == nil && file != nil {
		cover, serr := s.uploads.SaveCover(file)
		if serr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(serr))
		}
		post.Cover = cover
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(ctx, cache.RecentPostsKey, cache.PostKey(post.ID))

	return c.JSON(post)
}

// GetPosts handles GET /post. It returns the most recent posts with their
// authors resolved, newest first, at most listPageSize per page.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()

	limit := c.QueryInt("limit", listPageSize)
	if limit <= 0 || limit > listPageSize {
		limit = listPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var posts []*models.Post

	// Only the default first page is cached; it is the hot path for the
	// public front page.
	if limit == listPageSize && offset == 0 {
		err := cache.Aside(ctx, cache.RecentPostsKey, &posts, cache.PostTTL, func() error {
			var ferr error
			posts, ferr = s.postRepo.List(ctx, limit, offset)
			return ferr
		})
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(posts)
	}

	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /post/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var post models.Post
	cerr := cache.Aside(ctx, cache.PostKey(uint(id)), &post, cache.PostTTL, func() error {
		found, ferr := s.postRepo.GetByID(ctx, uint(id))
		if ferr != nil {
			return ferr
		}
		post = *found
		return nil
	})
	if cerr != nil {
		var appErr *models.AppError
		if errors.As(cerr, &appErr) {
			return models.RespondWithError(c, models.StatusForError(cerr), cerr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(cerr))
	}

	return c.JSON(&post)
}
