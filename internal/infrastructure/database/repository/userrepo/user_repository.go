package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Phicks-debug/daisii/internal/domain/user"
	"github.com/Phicks-debug/daisii/internal/infrastructure/database/dbschema"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

type UserGormRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *gorm.DB) user.Repository {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) Create(ctx context.Context, usr *user.User) error {
	entity := dbschema.NewSchemaUser(usr)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase,
			"failed to create user",
			err,
		)
	}
	return nil
}

func (repo *UserGormRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabase,
			"failed to find user by email",
			err,
		)
	}
	return entity.EtoD(), nil
}
