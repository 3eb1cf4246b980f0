package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"quilog/internal/engagement"
	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"
	"quilog/internal/validation"

	"github.com/google/uuid"
)

type PostService struct {
	posts    repository.PostRepository
	feed     *engagement.Feed
	agg      *engagement.Aggregator
	toggler  *engagement.Toggler
	appender *engagement.Appender
	drafts   *DraftService
	state    *engagement.State
	onCreate func(ctx context.Context, post *models.Post)
	now      func() time.Time
	newID    func() string
}

// PostServiceConfig wires the optional collaborators of a PostService.
type PostServiceConfig struct {
	// Fanout bounds concurrent lookups per engagement aggregation.
	Fanout int
	// Listener receives like and comment changes.
	Listener engagement.Listener
	// OptimisticLikes reports whether a user's toggles are shown before
	// the write is confirmed.
	OptimisticLikes func(ctx context.Context, userID string) bool
	// Drafts is cleared when its owner publishes.
	Drafts *DraftService
	// State is reloaded with every full feed read. Pass it in Listener too
	// to keep it current between reads.
	State *engagement.State
	// OnCreate runs after a post is stored.
	OnCreate func(ctx context.Context, post *models.Post)
	Now      func() time.Time
	NewID    func() string
}

type CreatePostInput struct {
	UserID string
	// UserName is the author's session display name.
	UserName    string
	Title       string
	Content     string
	Author      string
	Tags        string
	Category    string
	PublishDate string
	CoverImage  string
}

type UpdatePostInput struct {
	UserID      string
	PostID      string
	Title       string
	Content     string
	Tags        string
	Category    string
	PublishDate string
	CoverImage  string
}

type FeedInput struct {
	// UserID selects the by-user feed when set.
	UserID string
}

type ToggleLikeInput struct {
	PostID string
	UserID string
}

type AddCommentInput struct {
	PostID string
	UserID string
	Text   string
}

func NewPostService(store *repository.Store, cfg PostServiceConfig) *PostService {
	var togglerOpts []engagement.TogglerOption
	if cfg.OptimisticLikes != nil {
		togglerOpts = append(togglerOpts, engagement.WithOptimistic(cfg.OptimisticLikes))
	}
	var appenderOpts []engagement.AppenderOption
	if cfg.Now != nil {
		appenderOpts = append(appenderOpts, engagement.WithClock(cfg.Now))
	} else {
		cfg.Now = time.Now
	}
	if cfg.NewID != nil {
		appenderOpts = append(appenderOpts, engagement.WithIDGenerator(cfg.NewID))
	} else {
		cfg.NewID = uuid.NewString
	}

	return &PostService{
		posts:    store.Posts,
		feed:     engagement.NewFeed(store.Posts),
		agg:      engagement.NewAggregator(store.Users, store.Comments, cfg.Fanout),
		toggler:  engagement.NewToggler(store.Posts, cfg.Listener, togglerOpts...),
		appender: engagement.NewAppender(store.Posts, store.Comments, cfg.Listener, appenderOpts...),
		drafts:   cfg.Drafts,
		state:    cfg.State,
		onCreate: cfg.OnCreate,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("publish posts")
	}

	fields := validation.PostFields{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		Category:    in.Category,
		PublishDate: strings.TrimSpace(in.PublishDate),
		CoverImage:  strings.TrimSpace(in.CoverImage),
	}
	if fields.Category == "" {
		fields.Category = models.DefaultCategory
	}
	if err := validation.ValidatePost(fields); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = models.AnonymousAuthor
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = userName
	}
	cover := fields.CoverImage
	if cover == "" {
		cover = models.DefaultCoverImage
	}

	post := &models.Post{
		ID:          s.newID(),
		Title:       fields.Title,
		Content:     fields.Content,
		Author:      author,
		Tags:        strings.TrimSpace(in.Tags),
		Category:    fields.Category,
		PublishDate: fields.PublishDate,
		CoverImage:  cover,
		CreatedAt:   s.now().UTC(),
		UserID:      in.UserID,
		UserName:    userName,
		Likes:       []string{},
		Comments:    []string{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.drafts != nil {
		if err := s.drafts.Discard(ctx, in.UserID); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "failed to clear draft after publish",
				slog.String("user_id", in.UserID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.onCreate != nil {
		s.onCreate(ctx, post)
	}
	return post, nil
}

// UpdatePost applies the non-empty fields of in to a post owned by in.UserID.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("edit posts")
	}
	post, err := s.feed.Post(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("Only the author can edit this post")
	}

	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&post.Title, in.Title)
	set(&post.Content, in.Content)
	set(&post.Tags, in.Tags)
	set(&post.Category, in.Category)
	set(&post.PublishDate, in.PublishDate)
	set(&post.CoverImage, in.CoverImage)

	if err := validation.ValidatePost(validation.PostFields{
		Title:       post.Title,
		Content:     post.Content,
		Category:    post.Category,
		PublishDate: post.PublishDate,
		CoverImage:  post.CoverImage,
	}); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.feed.Post(ctx, id)
}

func (s *PostService) Feed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.UserID != "" {
		return s.feed.ByUser(ctx, in.UserID)
	}
	posts, err := s.feed.All(ctx)
	if err != nil {
		return nil, err
	}
	if s.state != nil {
		s.state.Load(posts)
	}
	return posts, nil
}

// Engagement returns the resolved likers and comments of a post.
func (s *PostService) Engagement(ctx context.Context, postID string) (*models.EngagementView, error) {
	post, err := s.feed.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.agg.Resolve(ctx, post)
}

// ToggleLike flips the user's like against the stored like set and returns
// the post with its updated likes.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("like posts")
	}
	post, err := s.feed.Post(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	res, err := s.toggler.Toggle(ctx, engagement.ToggleInput{
		PostID: post.ID,
		UserID: in.UserID,
		Likes:  post.Likes,
	})
	if err != nil {
		return nil, err
	}
	post.Likes = res.Likes
	return post, nil
}

// AddComment appends a comment and returns the refreshed engagement view.
// Blank text returns (nil, nil).
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*models.EngagementView, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("comment")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, nil
	}
	// refuse before writing so a missing post never leaves an orphan
	if _, err := s.feed.Post(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment, err := s.appender.Append(ctx, engagement.AppendInput{
		PostID: in.PostID,
		UserID: in.UserID,
		Text:   in.Text,
	})
	if err != nil || comment == nil {
		return nil, err
	}
	return s.Engagement(ctx, in.PostID)
}
