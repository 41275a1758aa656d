package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/models"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared with existing deployments.
const (
	postsCollection    = "viral_posts"
	historyCollection  = "generated_history"
	activityCollection = "activity_logs"
)

// ConnectMongo opens a client and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// EnsureMongoIndexes creates the lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "content", Value: "hashed"}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "likes", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}

	_, err = db.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	return nil
}

type mongoPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Likes     int                `bson:"likes"`
	Source    string             `bson:"source"`
	Timestamp float64            `bson:"timestamp"`
}

func (d mongoPost) model() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Likes:     d.Likes,
		Source:    d.Source,
		Timestamp: d.Timestamp,
	}
}

// MongoPostRepository stores harvested posts in the viral_posts collection.
type MongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{coll: db.Collection(postsCollection)}
}

func (r *MongoPostRepository) ExistsByContent(ctx context.Context, content string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"content": content}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return true, nil
}

func (r *MongoPostRepository) Insert(ctx context.Context, post models.Post) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoPost{
		Content:   post.Content,
		Likes:     post.Likes,
		Source:    post.Source,
		Timestamp: post.Timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert post: %w", err)
	}
	return insertedID(res), nil
}

func (r *MongoPostRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(n), nil
}

func (r *MongoPostRepository) ListTop(ctx context.Context, limit int) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "likes", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.D{}, opts)
}

func (r *MongoPostRepository) ListWindow(ctx context.Context, from, to float64, limit int) ([]models.Post, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "likes", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *MongoPostRepository) ListStats(ctx context.Context) ([]models.PostStat, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"likes": 1, "timestamp": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list post stats: %w", err)
	}

	var docs []mongoPost
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode post stats: %w", err)
	}

	stats := make([]models.PostStat, 0, len(docs))
	for _, d := range docs {
		stats = append(stats, models.PostStat{Likes: d.Likes, Timestamp: d.Timestamp})
	}
	return stats, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	var docs []mongoPost
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.model())
	}
	return posts, nil
}

type mongoRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Mode      string             `bson:"mode"`
	Topic     string             `bson:"topic"`
	Tone      string             `bson:"tone,omitempty"`
	Content   string             `bson:"content"`
	Image     string             `bson:"image_base64"`
	Timestamp float64            `bson:"timestamp"`
}

// MongoHistoryRepository stores generated content in generated_history.
type MongoHistoryRepository struct {
	coll *mongo.Collection
}

func NewMongoHistoryRepository(db *mongo.Database) *MongoHistoryRepository {
	return &MongoHistoryRepository{coll: db.Collection(historyCollection)}
}

func (r *MongoHistoryRepository) Insert(ctx context.Context, rec models.GeneratedRecord) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoRecord{
		Mode:      rec.Mode,
		Topic:     rec.Topic,
		Tone:      rec.Tone,
		Content:   rec.Content,
		Image:     rec.Image,
		Timestamp: rec.Timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert history record: %w", err)
	}
	return insertedID(res), nil
}

func (r *MongoHistoryRepository) List(ctx context.Context, limit int) ([]models.GeneratedRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	records := make([]models.GeneratedRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, models.GeneratedRecord{
			ID:        d.ID.Hex(),
			Mode:      d.Mode,
			Topic:     d.Topic,
			Tone:      d.Tone,
			Content:   d.Content,
			Image:     d.Image,
			Timestamp: d.Timestamp,
		})
	}
	return records, nil
}

func (r *MongoHistoryRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return int(n), nil
}

// Delete removes a record by hex id. Malformed ids are reported as not found.
func (r *MongoHistoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type mongoActivity struct {
	ID           string                 `bson:"_id"`
	Timestamp    time.Time              `bson:"timestamp"`
	ActivityType string                 `bson:"activity_type"`
	Message      string                 `bson:"message"`
	Details      map[string]interface{} `bson:"details,omitempty"`
	DurationMs   *int                   `bson:"duration_ms,omitempty"`
}

// MongoActivityRepository stores activity logs in the activity_logs collection.
type MongoActivityRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{coll: db.Collection(activityCollection)}
}

func (r *MongoActivityRepository) Log(ctx context.Context, log models.ActivityLog) error {
	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, mongoActivity{
		ID:           log.ID,
		Timestamp:    log.Timestamp,
		ActivityType: string(log.ActivityType),
		Message:      log.Message,
		Details:      log.Details,
		DurationMs:   log.DurationMs,
	})
	return err
}

func (r *MongoActivityRepository) List(ctx context.Context, limit int, activityType *models.ActivityType) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}

	filter := bson.M{}
	if activityType != nil {
		filter["activity_type"] = string(*activityType)
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []mongoActivity
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	logs := make([]models.ActivityLog, 0, len(docs))
	for _, d := range docs {
		logs = append(logs, models.ActivityLog{
			ID:           d.ID,
			Timestamp:    d.Timestamp,
			ActivityType: models.ActivityType(d.ActivityType),
			Message:      d.Message,
			Details:      d.Details,
			DurationMs:   d.DurationMs,
		})
	}
	return logs, nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}
