package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/camden-git/photocatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	photosCollection = "photos"
	albumsCollection = "albums"
	usersCollection  = "users"
)

// MongoStore keeps the catalogue in a MongoDB database, one collection per record type.
// Records are keyed by their integer "id" field, not by _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri, checks the connection and ensures the id indexes exist.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	for _, name := range []string{photosCollection, albumsCollection, usersCollection} {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create id index on %s: %w", name, err)
		}
	}

	log.Printf("repository.mongo: connected to database %s", dbName)
	return s, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return items, nil
}

// replaceAll upserts every document by id. Re-running it with the same input is a no-op.
func replaceAll[T any](ctx context.Context, coll *mongo.Collection, items []T, idOf func(T) int) error {
	if len(items) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "id", Value: idOf(item)}}).
			SetReplacement(item).
			SetUpsert(true))
	}

	if _, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to write %d documents to %s: %w", len(items), coll.Name(), err)
	}
	return nil
}

func (s *MongoStore) LoadPhotos(ctx context.Context) ([]models.Photo, error) {
	return findAll[models.Photo](ctx, s.db.Collection(photosCollection))
}

func (s *MongoStore) LoadAlbums(ctx context.Context) ([]models.Album, error) {
	return findAll[models.Album](ctx, s.db.Collection(albumsCollection))
}

func (s *MongoStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.db.Collection(usersCollection))
}

func (s *MongoStore) SavePhotos(ctx context.Context, photos []models.Photo) error {
	return replaceAll(ctx, s.db.Collection(photosCollection), photos, func(p models.Photo) int { return p.ID })
}

func (s *MongoStore) SavePhoto(ctx context.Context, photo models.Photo) error {
	_, err := s.db.Collection(photosCollection).ReplaceOne(ctx,
		bson.D{{Key: "id", Value: photo.ID}},
		photo,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save photo ID %d: %w", photo.ID, err)
	}
	return nil
}

func (s *MongoStore) SaveAlbums(ctx context.Context, albums []models.Album) error {
	return replaceAll(ctx, s.db.Collection(albumsCollection), albums, func(a models.Album) int { return a.ID })
}

func (s *MongoStore) SaveUsers(ctx context.Context, users []models.User) error {
	return replaceAll(ctx, s.db.Collection(usersCollection), users, func(u models.User) int { return u.ID })
}

// Drop removes the whole database. Used by tests against a throwaway database.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
