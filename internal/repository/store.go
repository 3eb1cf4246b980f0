package repository

import (
	"context"

	"gorm.io/gorm"
)

// NewGormStore returns the relational Store over db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Backend:  db.Dialector.Name(),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Users:    NewUserRepository(db),
		PingFunc: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		CloseFunc: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
