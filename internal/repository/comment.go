package repository

import (
	"context"

	"quilog/internal/models"

	"gorm.io/gorm"
)

type commentRepository struct {
	db   *gorm.DB
	inst *Instrument
}

// NewCommentRepository creates a new CommentRepository. The returned value
// also implements CommentLinker.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, inst: NewInstrument(db.Dialector.Name(), "comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, end := r.inst.Start(ctx, "create")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (comment *models.Comment, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var c models.Comment
	if err = r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Comment", id)
	}
	return &c, nil
}

func (r *commentRepository) List(ctx context.Context) (comments []*models.Comment, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	err = r.db.WithContext(ctx).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// CreateAndLink writes the comment and its post link in one transaction.
func (r *commentRepository) CreateAndLink(ctx context.Context, postID string, comment *models.Comment) (err error) {
	ctx, end := r.inst.Start(ctx, "create_and_link")
	defer func() { end(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return insertCommentLink(tx, postID, comment.ID)
	})
	if err == nil {
		r.inst.Logger().LogCreate(ctx, map[string]interface{}{"comment_id": comment.ID, "post_id": postID})
	}
	return err
}
