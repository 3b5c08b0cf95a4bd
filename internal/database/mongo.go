// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// MongoRepository reads samples from the live MongoDB store.
//
// The bandwidth collection holds wide documents: a timestamp plus one
// numeric field per region and a Global total. Each cache collection
// document is one cache offered for one query, carrying the cache's load
// at that moment, so the same documents serve load and selection reads.
type MongoRepository struct {
	client       *mongo.Client
	bandwidth    *mongo.Collection
	cache        *mongo.Collection
	queryTimeout time.Duration
}

var _ SampleRepository = (*MongoRepository)(nil)

// ConnectMongo dials MongoDB and pings the primary, retrying with
// exponential backoff until cfg.ConnectMaxElapsed has passed.
func ConnectMongo(ctx context.Context, cfg *config.StoreConfig) (*MongoRepository, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("edgewatch").
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	attempt := 0
	client, err := backoff.Retry(ctx, func() (*mongo.Client, error) {
		attempt++
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			// Connect only fails on invalid options; retrying cannot help.
			return nil, backoff.Permanent(err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return nil, err
		}
		return c, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(cfg.ConnectMaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("MongoDB not reachable, retrying")
		}),
	)
	if err != nil {
		return nil, unavailable("connect mongodb", err)
	}

	db := client.Database(cfg.MongoDatabase)
	logging.Info().
		Str("database", cfg.MongoDatabase).
		Int("attempts", attempt).
		Msg("Connected to MongoDB")

	return &MongoRepository{
		client:       client,
		bandwidth:    db.Collection(cfg.BandwidthCollection),
		cache:        db.Collection(cfg.CacheCollection),
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

func (r *MongoRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func windowFilter(w Window) bson.M {
	return bson.M{"timestamp": bson.M{"$gte": w.Start, "$lte": w.End}}
}

// loadFilter builds the cache collection filter. Region matches both the
// canonical and the display spelling since older documents use either.
func loadFilter(w Window, f LoadFilter) bson.M {
	filter := windowFilter(w)
	// Rows without a numeric load are not samples; they would decode as 0.
	filter["load"] = bson.M{"$type": "number"}
	if f.Region != "" {
		spellings := []string{topology.CanonicalRegion(f.Region)}
		if d := topology.DisplayRegion(f.Region); d != spellings[0] {
			spellings = append(spellings, d)
		}
		filter["region"] = bson.M{"$in": spellings}
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Host != "" {
		filter["host"] = f.Host
	}
	if f.SampleType != "" {
		filter["type"] = f.SampleType
	}
	return filter
}

// BandwidthSamples implements SampleRepository.
func (r *MongoRepository) BandwidthSamples(ctx context.Context, w Window) ([]models.BandwidthSample, error) {
	return r.findBandwidth(ctx, "bandwidth_window", windowFilter(w), options.Find().SetProjection(bson.M{"_id": 0}))
}

// LatestBandwidth implements SampleRepository.
func (r *MongoRepository) LatestBandwidth(ctx context.Context, limit int) ([]models.BandwidthSample, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.findBandwidth(ctx, "bandwidth_latest", bson.M{}, opts)
}

func (r *MongoRepository) findBandwidth(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) (samples []models.BandwidthSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, r.bandwidth.Name(), time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.bandwidth.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer func() { _ = cur.Close(context.Background()) }()

	samples = make([]models.BandwidthSample, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		if s, ok := bandwidthFromDoc(doc); ok {
			samples = append(samples, s)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return samples, nil
}

// bandwidthFromDoc converts a wide bandwidth document. Documents without a
// usable timestamp are skipped; non-numeric fields are ignored.
func bandwidthFromDoc(doc bson.M) (models.BandwidthSample, bool) {
	ts, ok := asTime(doc["timestamp"])
	if !ok {
		return models.BandwidthSample{}, false
	}
	s := models.BandwidthSample{Timestamp: ts, Series: make(map[string]float64, len(doc)-1)}
	for k, v := range doc {
		if k == "timestamp" || k == "_id" {
			continue
		}
		if f, ok := asFloat(v); ok {
			s.Series[topology.CanonicalRegion(k)] = f
		}
	}
	return s, true
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t.UTC(), true
	default:
		return time.Time{}, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// BandwidthBounds implements SampleRepository.
func (r *MongoRepository) BandwidthBounds(ctx context.Context) (b Bounds, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("bandwidth_bounds", r.bandwidth.Name(), time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if b.First, err = r.edgeTimestamp(ctx, 1); err != nil {
		return Bounds{}, err
	}
	if b.Last, err = r.edgeTimestamp(ctx, -1); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

func (r *MongoRepository) edgeTimestamp(ctx context.Context, order int) (time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "timestamp", Value: order}}).
		SetProjection(bson.M{"_id": 0, "timestamp": 1})

	var doc struct {
		Timestamp time.Time `bson:"timestamp"`
	}
	err := r.bandwidth.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, unavailable("bandwidth_bounds", err)
	}
	return doc.Timestamp.UTC(), nil
}

// LoadSamples implements SampleRepository.
func (r *MongoRepository) LoadSamples(ctx context.Context, w Window, f LoadFilter) (samples []models.LoadSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("load_samples", r.cache.Name(), time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{
		"_id": 0, "timestamp": 1, "host": 1, "city": 1, "region": 1, "load": 1, "type": 1,
	})
	cur, err := r.cache.Find(ctx, loadFilter(w, f), opts)
	if err != nil {
		return nil, unavailable("load_samples", err)
	}
	samples = make([]models.LoadSample, 0)
	if err := cur.All(ctx, &samples); err != nil {
		return nil, unavailable("load_samples", err)
	}
	for i := range samples {
		samples[i].Timestamp = samples[i].Timestamp.UTC()
		samples[i].Region = topology.CanonicalRegion(samples[i].Region)
	}
	return samples, nil
}

// selectionDoc is the stored shape of a query selection row.
type selectionDoc struct {
	Timestamp time.Time `bson:"timestamp"`
	QueryID   int       `bson:"query_id"`
	City      string    `bson:"city"`
}

// QuerySelectionSamples implements SampleRepository. No sort is applied:
// natural order is the ranking order the selector wrote.
func (r *MongoRepository) QuerySelectionSamples(ctx context.Context, w Window) (samples []models.QuerySelectionSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("query_selections", r.cache.Name(), time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := windowFilter(w)
	filter["query_id"] = bson.M{"$exists": true}
	opts := options.Find().SetProjection(bson.M{"_id": 0, "timestamp": 1, "query_id": 1, "city": 1})

	cur, err := r.cache.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable("query_selections", err)
	}
	var docs []selectionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("query_selections", err)
	}
	samples = make([]models.QuerySelectionSample, 0, len(docs))
	for _, d := range docs {
		samples = append(samples, models.QuerySelectionSample{
			Timestamp:    d.Timestamp.UTC(),
			QueryID:      d.QueryID,
			OriginCellID: d.QueryID,
			City:         d.City,
		})
	}
	return samples, nil
}

// Ping implements SampleRepository.
func (r *MongoRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return unavailable("ping", r.client.Ping(ctx, readpref.Primary()))
}

// Close disconnects the client.
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
