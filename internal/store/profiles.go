package store

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"fichaje/internal/model"
	"fichaje/storage/database"
)

type ProfileStore struct {
	db *gorm.DB
}

var (
	profileStore     *ProfileStore
	profileStoreOnce sync.Once
)

func Profiles() *ProfileStore {
	profileStoreOnce.Do(func() {
		profileStore = &ProfileStore{db: database.DB()}
	})
	return profileStore
}

func (s *ProfileStore) Create(ctx context.Context, profile *model.Profile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

// GetByEmail devuelve (nil, nil) si no existe.
func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileStore) GetByPublicID(ctx context.Context, publicID int64) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByIDs carga perfiles en bloque, indexados por id.
func (s *ProfileStore) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	result := make(map[int64]model.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var profiles []model.Profile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}

	for _, p := range profiles {
		result[p.ID] = p
	}
	return result, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := s.db.WithContext(ctx).Order("full_name ASC").Find(&profiles).Error
	return profiles, err
}
