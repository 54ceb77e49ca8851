package mongodb

import (
	"context"
	"time"

	"github.com/krancour/dqueue/pkg/consumer"
	"github.com/krancour/dqueue/pkg/journal"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongodbTimeout = 5 * time.Second

// runStore is a MongoDB-based implementation of the journal.Store interface.
type runStore struct {
	collection *mongo.Collection
}

// NewStore returns a MongoDB-based implementation of the journal.Store
// interface. It ensures required indexes exist.
func NewStore(database *mongo.Database) (journal.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongodbTimeout)
	defer cancel()

	unique := true

	collection := database.Collection("runs")
	if _, err := collection.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys: bson.M{
					"id": 1,
				},
				Options: &options.IndexOptions{
					Unique: &unique,
				},
			},
			{
				Keys: bson.D{
					{Key: "queue", Value: 1},
					{Key: "started", Value: -1},
				},
			},
		},
	); err != nil {
		return nil, errors.Wrap(err, "error adding indexes to runs collection")
	}

	return &runStore{
		collection: collection,
	}, nil
}

func (r *runStore) CreateRun(ctx context.Context, run journal.Run) error {
	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return errors.Wrapf(err, "error creating run %q", run.ID)
	}
	return nil
}

func (r *runStore) UpdateRunState(
	ctx context.Context,
	id string,
	state consumer.State,
) error {
	set := bson.M{
		"state": state,
	}
	if state == consumer.StateDone {
		set["sentinelRepushed"] = true
	}
	return r.updateRun(ctx, id, bson.M{"$set": set})
}

func (r *runStore) IncrementItemsConsumed(
	ctx context.Context,
	id string,
) error {
	return r.updateRun(
		ctx,
		id,
		bson.M{
			"$inc": bson.M{
				"itemsConsumed": 1,
			},
		},
	)
}

func (r *runStore) EndRun(
	ctx context.Context,
	id string,
	ended time.Time,
	errMsg string,
) error {
	set := bson.M{
		"ended": ended,
	}
	if errMsg != "" {
		set["error"] = errMsg
	}
	return r.updateRun(ctx, id, bson.M{"$set": set})
}

func (r *runStore) updateRun(
	ctx context.Context,
	id string,
	update bson.M,
) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return errors.Wrapf(err, "error updating run %q", id)
	}
	if res.MatchedCount == 0 {
		return errors.Errorf("run %q not found", id)
	}
	return nil
}

func (r *runStore) ListRuns(
	ctx context.Context,
	queueName string,
	limit int64,
) ([]journal.Run, error) {
	criteria := bson.M{}
	if queueName != "" {
		criteria["queue"] = queueName
	}
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"started": -1})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cur, err := r.collection.Find(ctx, criteria, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error finding runs")
	}
	runs := []journal.Run{}
	if err := cur.All(ctx, &runs); err != nil {
		return nil, errors.Wrap(err, "error decoding runs")
	}
	return runs, nil
}
