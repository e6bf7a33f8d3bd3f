package repository

import (
	"context"
	"fmt"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const regNoIndexName = "regNo_unique"

// MongoRepo implements Repository on a MongoDB collection. Documents get a
// driver-generated ObjectID; it is exposed to callers as a hex string.
type MongoRepo struct {
	col         *mongo.Collection
	uniqueRegNo bool
}

func NewMongoRepo(col *mongo.Collection, uniqueRegNo bool) *MongoRepo {
	return &MongoRepo{col: col, uniqueRegNo: uniqueRegNo}
}

// EnsureIndexes creates the unique regNo index when duplicate detection is
// enabled. It is idempotent.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	if !m.uniqueRegNo {
		return nil
	}
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: application.FieldRegNo, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(regNoIndexName),
	}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("create regNo index: %w", err)
	}
	return nil
}

func (m *MongoRepo) Insert(ctx context.Context, rec *application.Record) (string, error) {
	res, err := m.col.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert submission: %w", ErrDuplicate)
		}
		return "", fmt.Errorf("insert submission: %w", err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		if !id.IsZero() {
			return id.Hex(), nil
		}
	case string:
		if id != "" {
			return id, nil
		}
	}
	return "", ErrNoIdentifier
}

func (m *MongoRepo) List(ctx context.Context) ([]application.Submission, error) {
	cur, err := m.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cur.Close(ctx)
	out := []application.Submission{}
	for cur.Next(ctx) {
		var d bson.D
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		out = append(out, toSubmission(d))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// Delete removes one submission. Ids that are not valid ObjectIDs cannot
// match anything and report ErrNotFound.
func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, bson.D{{Key: application.FieldID, Value: oid}})
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
