// internal/app/store/records/mongo.go
package records

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Mongo is the MongoDB-backed Store. Live queries use change streams, which
// require a replica set or sharded cluster.
//
// Each relevant change event re-runs the scoped Find and emits the result, so
// every emitted record comes from an equality-filtered query. An event is
// relevant when the post-image matches the filter or when it touches a record
// that was in the previous snapshot (deletes and records moving out).
type Mongo struct {
	db  *mongo.Database
	log *zap.Logger
	now func() time.Time
}

// NewMongo wraps a database handle.
func NewMongo(db *mongo.Database, logger *zap.Logger) *Mongo {
	return &Mongo{
		db:  db,
		log: logger,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

func (m *Mongo) Find(ctx context.Context, collection string, f Filter) ([]Record, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M(f), options.Find().SetSort(bson.D{{Key: FieldID, Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Record{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, Record(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.M `bson:"fullDocument"`
}

func (m *Mongo) Watch(ctx context.Context, collection string, f Filter) (*Subscription, error) {
	coll := m.db.Collection(collection)
	wctx, cancel := context.WithCancel(ctx)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	// The stream is opened before the initial Find so no change falls between them.
	cs, err := coll.Watch(wctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, &SubscriptionError{Collection: collection, Err: err}
	}

	initial, err := m.Find(wctx, collection, f)
	if err != nil {
		_ = cs.Close(context.Background())
		cancel()
		return nil, &SubscriptionError{Collection: collection, Err: err}
	}

	sub := newSubscription(collection, cancel)
	sub.push(initial)

	go m.follow(wctx, cs, sub, collection, f, idSet(initial))
	return sub, nil
}

func (m *Mongo) follow(ctx context.Context, cs *mongo.ChangeStream, sub *Subscription, collection string, f Filter, seen map[string]struct{}) {
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var ev changeEvent
		if err := cs.Decode(&ev); err != nil {
			m.log.Warn("change event decode failed",
				zap.String("collection", collection),
				zap.Error(err))
			continue
		}
		_, wasSeen := seen[idString(ev.DocumentKey.ID)]
		if !wasSeen && (ev.FullDocument == nil || !Matches(Record(ev.FullDocument), f)) {
			continue
		}
		recs, err := m.Find(ctx, collection, f)
		if err != nil {
			if ctx.Err() == nil {
				sub.fail(err)
			}
			return
		}
		seen = idSet(recs)
		if !sub.push(recs) {
			return
		}
	}

	if err := cs.Err(); err != nil && ctx.Err() == nil {
		m.log.Error("change stream ended",
			zap.String("collection", collection),
			zap.String("subscription", sub.ID()),
			zap.Error(err))
		sub.fail(err)
		return
	}
	if ctx.Err() != nil {
		sub.Cancel()
	}
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Record, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{FieldID: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return Record(doc), nil
}

func (m *Mongo) Add(ctx context.Context, collection string, rec Record) (Record, error) {
	stored := stamp(rec, func() string { return primitive.NewObjectID().Hex() }, m.now())
	if _, err := m.db.Collection(collection).InsertOne(ctx, bson.M(stored)); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, &ConflictError{Collection: collection, ID: stored.ID()}
		}
		return nil, &WriteError{Op: "add", Collection: collection, Err: err}
	}
	return stored, nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields Record) (Record, error) {
	set := bson.M{}
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return m.Get(ctx, collection, id)
	}

	var doc bson.M
	err := m.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{FieldID: id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return nil, &WriteError{Op: "update", Collection: collection, Err: err}
	}
	return Record(doc), nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{FieldID: id}); err != nil {
		return &WriteError{Op: "delete", Collection: collection, Err: err}
	}
	return nil
}

func idSet(recs []Record) map[string]struct{} {
	out := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		out[r.ID()] = struct{}{}
	}
	return out
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	}
	return ""
}
