package repository

import (
	"context"
	"fmt"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const saveBatchSize = 100

// GormStore handles database operations for the catalogue collections over an SQL database.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore creates a new instance of GormStore. The schema must already be migrated.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// OpenGormStore opens the SQLite database at path and migrates the catalogue schema.
func OpenGormStore(path string) (*GormStore, error) {
	db, err := database.InitGormDB(path)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}
	return NewGormStore(db), nil
}

func (r *GormStore) LoadPhotos(ctx context.Context) ([]models.Photo, error) {
	var photos []models.Photo
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	return photos, nil
}

func (r *GormStore) LoadAlbums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to load albums: %w", err)
	}
	return albums, nil
}

func (r *GormStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// upsertAll inserts rows or overwrites every column of rows whose primary key exists
func upsertAll[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, saveBatchSize).Error
	})
}

// SavePhotos upserts every photo by id in a single transaction.
func (r *GormStore) SavePhotos(ctx context.Context, photos []models.Photo) error {
	if err := upsertAll(ctx, r.DB, photos); err != nil {
		return fmt.Errorf("failed to save %d photos: %w", len(photos), err)
	}
	return nil
}

// SavePhoto upserts a single photo by id.
func (r *GormStore) SavePhoto(ctx context.Context, photo models.Photo) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&photo).Error
	if err != nil {
		return fmt.Errorf("failed to save photo ID %d: %w", photo.ID, err)
	}
	return nil
}

func (r *GormStore) SaveAlbums(ctx context.Context, albums []models.Album) error {
	if err := upsertAll(ctx, r.DB, albums); err != nil {
		return fmt.Errorf("failed to save %d albums: %w", len(albums), err)
	}
	return nil
}

func (r *GormStore) SaveUsers(ctx context.Context, users []models.User) error {
	if err := upsertAll(ctx, r.DB, users); err != nil {
		return fmt.Errorf("failed to save %d users: %w", len(users), err)
	}
	return nil
}

func (r *GormStore) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}
	return sqlDB.Close()
}
