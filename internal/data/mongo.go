package data

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultBookCollectionName = "books"

// bookDocument is the BSON shape of a book. The opaque id is stored as _id.
type bookDocument struct {
	ID     string `bson:"_id"`
	Title  string `bson:"title"`
	Author string `bson:"author"`
}

func (d bookDocument) book() *Book {
	return &Book{ID: d.ID, Title: d.Title, Author: d.Author}
}

// MongoBookStore keeps books as documents in a MongoDB collection.
type MongoBookStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri, verifies the primary is reachable and
// returns a store over the books collection of database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoBookStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return NewMongoBookStore(client, database)
}

// NewMongoBookStore builds a store over an existing client.
func NewMongoBookStore(client *mongo.Client, database string) (*MongoBookStore, error) {
	if client == nil {
		return nil, ErrNilDatabaseConnection
	}
	return &MongoBookStore{
		client: client,
		coll:   client.Database(database).Collection(defaultBookCollectionName),
	}, nil
}

// Close disconnects the client.
func (m *MongoBookStore) Close() error {
	return m.client.Disconnect(context.Background())
}

// FindAll returns every document in natural order.
func (m *MongoBookStore) FindAll(ctx context.Context) ([]*Book, error) {
	cursor, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	books := make([]*Book, 0, len(docs))
	for _, doc := range docs {
		books = append(books, doc.book())
	}
	return books, nil
}

// FindByID returns the document with the given _id.
func (m *MongoBookStore) FindByID(ctx context.Context, id string) (*Book, error) {
	var doc bookDocument
	err := m.coll.FindOne(ctx, byID(id)).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err)
	}
	return doc.book(), nil
}

// Create inserts book under a freshly generated _id.
func (m *MongoBookStore) Create(ctx context.Context, book *Book) error {
	doc := bookDocument{ID: NewID(), Title: book.Title, Author: book.Author}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	book.ID = doc.ID
	return nil
}

// UpdateByID applies a $set of the provided fields and returns the
// document as it is after the update.
func (m *MongoBookStore) UpdateByID(ctx context.Context, id string, input UpdateBookInput) (*Book, error) {
	if input.Empty() {
		return m.FindByID(ctx, id)
	}

	set := bson.D{}
	if input.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *input.Title})
	}
	if input.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *input.Author})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookDocument
	err := m.coll.FindOneAndUpdate(ctx, byID(id), bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err)
	}
	return doc.book(), nil
}

// DeleteByID removes the document and returns it.
func (m *MongoBookStore) DeleteByID(ctx context.Context, id string) (*Book, error) {
	var doc bookDocument
	err := m.coll.FindOneAndDelete(ctx, byID(id)).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err)
	}
	return doc.book(), nil
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func mapNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRecordNotFound
	}
	return err
}
