package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the live Store. Document ids are stored as string _id values.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials the server and verifies the connection.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{client: db.Client(), db: db}
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func (m *Mongo) Get(ctx context.Context, collection, id string, out any) error {
	err := m.db.Collection(collection).FindOne(ctx, byID(id)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) Exists(ctx context.Context, collection, id string) (bool, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, byID(id), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, doc any) error {
	encoded, err := toDocument(doc)
	if err != nil {
		return err
	}
	encoded["_id"] = id

	_, err = m.db.Collection(collection).ReplaceOne(ctx, byID(id), encoded, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	encoded, err := toDocument(fields)
	if err != nil {
		return err
	}
	delete(encoded, "_id")
	if len(encoded) == 0 {
		return nil
	}

	update := bson.M{"$set": flatten(encoded)}
	_, err = m.db.Collection(collection).UpdateOne(ctx, byID(id), update, options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	encoded, err := toDocument(fields)
	if err != nil {
		return err
	}
	delete(encoded, "_id")
	if len(encoded) == 0 {
		ok, err := m.Exists(ctx, collection, id)
		if err == nil && !ok {
			return ErrNotFound
		}
		return err
	}

	result, err := m.db.Collection(collection).UpdateOne(ctx, byID(id), bson.M{"$set": encoded})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Add(ctx context.Context, collection string, doc any) (string, error) {
	encoded, err := toDocument(doc)
	if err != nil {
		return "", err
	}
	id := primitive.NewObjectID().Hex()
	encoded["_id"] = id

	if _, err := m.db.Collection(collection).InsertOne(ctx, encoded); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	result, err := m.db.Collection(collection).DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Find(ctx context.Context, collection string, q Query, out any) error {
	opts := options.Find()
	if len(q.OrderBy) > 0 {
		sort := bson.D{}
		for _, o := range q.OrderBy {
			dir := 1
			if o.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: o.Field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := m.db.Collection(collection).Find(ctx, mongoFilter(q.Filters), opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mongoFilter(filters []Filter) bson.M {
	conds := bson.A{}
	for _, f := range filters {
		switch f.Op {
		case OpEqual, OpArrayContains:
			// Equality on an array field matches any element.
			conds = append(conds, bson.M{f.Field: f.Value})
		case OpArrayContainsAny:
			conds = append(conds, bson.M{f.Field: bson.M{"$in": f.Value}})
		}
	}
	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0].(bson.M)
	}
	return bson.M{"$and": conds}
}
