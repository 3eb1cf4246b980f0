package repository

import (
	"context"

	"quilog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db   *gorm.DB
	inst *Instrument
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, inst: NewInstrument(db.Dialector.Name(), "users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (profile *models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "get")
	defer func() { end(err) }()

	var p models.Profile
	if err = r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "User", id)
	}
	return &p, nil
}

func (r *userRepository) Upsert(ctx context.Context, profile *models.Profile) (err error) {
	ctx, end := r.inst.Start(ctx, "upsert")
	defer func() { end(err) }()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(profile).Error
}

func (r *userRepository) Update(ctx context.Context, id string, patch models.Profile) (profile *models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "update")
	defer func() { end(err) }()

	var p models.Profile
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return notFound(err, "User", id)
		}
		p.Merge(patch)
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	r.inst.Logger().LogUpdate(ctx, map[string]interface{}{"user_id": id})
	return &p, nil
}

func (r *userRepository) List(ctx context.Context) (profiles []*models.Profile, err error) {
	ctx, end := r.inst.Start(ctx, "list")
	defer func() { end(err) }()

	err = r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error
	return profiles, err
}
