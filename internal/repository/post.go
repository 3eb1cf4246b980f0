package repository

import (
	"context"

	"quilog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postRepository implements PostRepository on gorm. Likes and comment ids
// live in the post_likes and post_comments join tables; their autoincrement
// ids give insertion order.
type postRepository struct {
	db   *gorm.DB
	inst *Instrument
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, inst: NewInstrument(db.Dialector.Name(), "blogs")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.inst.Start(ctx, "create")
	defer func() { end(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, uid := range post.Likes {
			if err := insertLike(tx, post.ID, uid); err != nil {
				return err
			}
		}
		for _, cid := range post.Comments {
			if err := insertCommentLink(tx, post.ID, cid); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		r.inst.Logger().LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id string) (post *models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var p models.Post
	if err = r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Post", id)
	}
	if err = r.attachSets(ctx, []*models.Post{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	if err = r.db.WithContext(ctx).Find(&posts).Error; err != nil {
		return nil, err
	}
	if err = r.attachSets(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) (posts []*models.Post, err error) {
	ctx, end := r.inst.Start(ctx, "list_by_user")
	defer func() { end(err) }()

	if err = r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, err
	}
	if err = r.attachSets(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, end := r.inst.Start(ctx, "update")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select("title", "content", "author", "tags", "category", "publish_date", "cover_image").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.inst.Logger().LogUpdate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.inst.Start(ctx, "add_like")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		return insertLike(tx, postID, userID)
	})
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (err error) {
	ctx, end := r.inst.Start(ctx, "remove_like")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		return tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{}).Error
	})
}

func (r *postRepository) AppendComment(ctx context.Context, postID, commentID string) (err error) {
	ctx, end := r.inst.Start(ctx, "append_comment")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		return insertCommentLink(tx, postID, commentID)
	})
}

// attachSets fills Likes and Comments for posts with two batched queries.
func (r *postRepository) attachSets(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Likes = []string{}
		p.Comments = []string{}
	}

	var likes []models.PostLike
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("id ASC").Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		byID[l.PostID].Likes = append(byID[l.PostID].Likes, l.UserID)
	}

	var links []models.PostComment
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("id ASC").Find(&links).Error; err != nil {
		return err
	}
	for _, l := range links {
		byID[l.PostID].Comments = append(byID[l.PostID].Comments, l.CommentID)
	}
	return nil
}

func requirePost(tx *gorm.DB, postID string) error {
	var n int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func insertLike(tx *gorm.DB, postID, userID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, UserID: userID}).Error
}

func insertCommentLink(tx *gorm.DB, postID, commentID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostComment{PostID: postID, CommentID: commentID}).Error
}
