package server

import (
	"quilog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Tags        string `json:"tags"`
	Category    string `json:"category"`
	PublishDate string `json:"publishDate"`
	CoverImage  string `json:"coverImage"`
}

type likeResponse struct {
	PostID    string   `json:"postId"`
	Liked     bool     `json:"liked"`
	Likes     []string `json:"likes"`
	LikeCount int      `json:"likeCount"`
}

// GetPosts handles GET /api/posts. ?userId= narrows the feed to one author.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.UserContext(), service.FeedInput{UserID: c.Query("userId")})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetEngagement handles GET /api/posts/:id/engagement
func (s *Server) GetEngagement(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	view, err := s.postService.Engagement(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	posts, err := s.postService.Feed(c.UserContext(), service.FeedInput{UserID: id})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      currentUserID(c),
		UserName:    currentSession(c).DisplayName(),
		Title:       req.Title,
		Content:     req.Content,
		Author:      req.Author,
		Tags:        req.Tags,
		Category:    req.Category,
		PublishDate: req.PublishDate,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		PostID:      id,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Category:    req.Category,
		PublishDate: req.PublishDate,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// ToggleLike handles POST /api/posts/:id/like. A second toggle by the same
// user while the first is in flight answers 409.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID := currentUserID(c)

	post, err := s.postService.ToggleLike(c.UserContext(), service.ToggleLikeInput{PostID: id, UserID: userID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likeResponse{
		PostID:    post.ID,
		Liked:     post.LikedBy(userID),
		Likes:     post.Likes,
		LikeCount: len(post.Likes),
	})
}

// CreateComment handles POST /api/posts/:id/comments. Blank text is a no-op
// answered with 204.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	view, err := s.postService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID: id,
		UserID: currentUserID(c),
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}
	if view == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}
