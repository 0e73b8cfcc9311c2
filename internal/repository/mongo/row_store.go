package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const manifestCollectionName = "sync_manifest"

// collectionNames maps each workspace collection onto its MongoDB collection.
var collectionNames = map[domain.Collection]string{
	domain.CollectionExercises: "exercises",
	domain.CollectionRoutines:  "routines",
	domain.CollectionTags:      "categories",
	domain.CollectionScheduled: "scheduled_routines",
}

// rowDocument is one element of a collection. _id is "<owner>:<key>" so
// saving the same element again replaces it.
type rowDocument struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"ownerId"`
	Key       string    `bson:"key"`
	Position  int       `bson:"position"`
	Body      bson.Raw  `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// manifestDocument records that an owner's collection was saved at least
// once, so an empty collection can be told apart from a missing one.
type manifestDocument struct {
	ID         string    `bson:"_id"`
	OwnerID    string    `bson:"ownerId"`
	Collection string    `bson:"collection"`
	Rows       int       `bson:"rows"`
	SavedAt    time.Time `bson:"savedAt"`
}

// RowStore implements repository.BlobStore with one document per element.
type RowStore struct {
	db  *mongo.Database
	now func() time.Time
}

// NewRowStore creates a row store backed by db.
func NewRowStore(db *mongo.Database) *RowStore {
	return &RowStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.BlobStore = (*RowStore)(nil)

func (s *RowStore) collection(c domain.Collection) (*mongo.Collection, error) {
	name, ok := collectionNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	return s.db.Collection(name), nil
}

func rowID(owner, key string) string { return owner + ":" + key }

// Save upserts every element with its position and deletes the owner's rows
// that are no longer part of the collection.
func (s *RowStore) Save(ctx context.Context, owner string, c domain.Collection, blob []byte) error {
	if !repository.ValidOwner(owner) {
		return fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	coll, err := s.collection(c)
	if err != nil {
		return err
	}
	rows, err := repository.SplitRows(c, blob)
	if err != nil {
		return err
	}

	now := s.now()
	keys := make([]string, 0, len(rows))
	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		var body bson.D
		if err := bson.UnmarshalExtJSON(row.Body, false, &body); err != nil {
			return fmt.Errorf("%w: %s/%s: %v", repository.ErrInvalidRow, c, row.Key, err)
		}
		doc := bson.D{
			{Key: "_id", Value: rowID(owner, row.Key)},
			{Key: "ownerId", Value: owner},
			{Key: "key", Value: row.Key},
			{Key: "position", Value: row.Position},
			{Key: "body", Value: body},
			{Key: "updatedAt", Value: now},
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": rowID(owner, row.Key)}).
			SetReplacement(doc).
			SetUpsert(true))
		keys = append(keys, row.Key)
	}

	if len(models) > 0 {
		if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("upserting %s rows: %w", c, err)
		}
	}

	// Stale rows go after the upserts so a failure in between never loses data.
	stale := bson.M{"ownerId": owner, "key": bson.M{"$nin": keys}}
	if _, err := coll.DeleteMany(ctx, stale); err != nil {
		return fmt.Errorf("deleting stale %s rows: %w", c, err)
	}

	manifest := manifestDocument{
		ID:         rowID(owner, string(c)),
		OwnerID:    owner,
		Collection: string(c),
		Rows:       len(rows),
		SavedAt:    now,
	}
	_, err = s.db.Collection(manifestCollectionName).ReplaceOne(ctx,
		bson.M{"_id": manifest.ID}, manifest, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("updating manifest for %s: %w", c, err)
	}
	return nil
}

// Load reads the owner's rows sorted by position and rebuilds the array.
func (s *RowStore) Load(ctx context.Context, owner string, c domain.Collection) ([]byte, error) {
	if !repository.ValidOwner(owner) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	coll, err := s.collection(c)
	if err != nil {
		return nil, err
	}

	var manifest manifestDocument
	err = s.db.Collection(manifestCollectionName).FindOne(ctx, bson.M{"_id": rowID(owner, string(c))}).Decode(&manifest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest for %s: %w", c, err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"ownerId": owner}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []rowDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]repository.Row, 0, len(docs))
	for _, doc := range docs {
		body, err := bson.MarshalExtJSON(doc.Body, false, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", repository.ErrInvalidRow, c, doc.Key, err)
		}
		rows = append(rows, repository.Row{Key: doc.Key, Position: doc.Position, Body: body})
	}
	return repository.JoinRows(rows), nil
}

// EnsureIndexes creates the indexes the row store queries on.
// Call this once during application startup.
func (s *RowStore) EnsureIndexes(ctx context.Context) {
	for _, name := range collectionNames {
		indexes := []mongo.IndexModel{
			{
				// Load scans one owner's rows in order
				Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "position", Value: 1}},
				Options: options.Index().SetName("owner_position"),
			},
			{
				Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetName("owner_key").SetUnique(true),
			},
		}
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("failed to create indexes")
		}
	}

	manifestIndex := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}}
	if _, err := s.db.Collection(manifestCollectionName).Indexes().CreateOne(ctx, manifestIndex); err != nil {
		log.Warn().Err(err).Str("collection", manifestCollectionName).Msg("failed to create indexes")
	}
}
