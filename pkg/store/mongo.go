package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ferrors "github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/template"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "framecraft"

// MongoStore keeps one document per template in the "templates"
// collection, keyed by template id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	ID        string             `bson:"_id"`
	Document  *template.Document `bson:"document"`
	Frames    int                `bson:"frames"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to uri and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "mongo store requires a URL")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("templates"),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*template.Document, error) {
	if err := ferrors.ValidateID(id); err != nil {
		return nil, err
	}
	var e mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if e.Document == nil {
		return nil, ferrors.New(ferrors.ErrCodeUnsupportedFormat, "template %s has no document", id)
	}
	if e.Document.Frames == nil {
		e.Document.Frames = []template.Record{}
	}
	return e.Document, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, doc *template.Document) error {
	if err := checkPut(id, doc); err != nil {
		return err
	}
	e := mongoEntry{ID: id, Document: template.Normalize(doc), Frames: len(doc.Frames), UpdatedAt: time.Now().UTC()}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "frames": 1, "updated_at": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
