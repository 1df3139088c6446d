// Package mongostore keeps checkpoint rows in a MongoDB collection.
package mongostore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"tweetscraper/pkg/checkpoint"
	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
)

const (
	connectTimeout = 10 * time.Second
	opTimeout      = 30 * time.Second
)

// Store writes each row as a document whose keys are the header columns.
// tweet_num is stored as an integer so the resume offset can be found with
// an index.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	header     checkpoint.Row
	logger     logger.Logger
}

// Connect opens the collection and ensures the tweet_num index exists
func Connect(ctx context.Context, uri, database, collection string, header checkpoint.Row, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStore, err, "failed to connect to MongoDB")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrorTypeStore, err, "failed to ping MongoDB")
	}

	s := &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
		header:     header,
		logger:     log,
	}

	index := mongo.IndexModel{Keys: bson.D{{Key: checkpoint.ColumnTweetNum, Value: -1}}}
	if _, err := s.collection.Indexes().CreateOne(cctx, index); err != nil {
		log.WithError(err).Warn("failed to create tweet_num index")
	}

	return s, nil
}

// Offset returns the highest stored tweet_num
func (s *Store) Offset(ctx context.Context) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: checkpoint.ColumnTweetNum, Value: -1}}).
		SetProjection(bson.M{checkpoint.ColumnTweetNum: 1})

	var doc bson.M
	err := s.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, errs.Wrap(errs.ErrorTypeStore, err, "failed to read resume offset")
	}

	n, ok := toInt(doc[checkpoint.ColumnTweetNum])
	if !ok {
		return -1, true, nil
	}
	return n, true, nil
}

// Append inserts rows; a row equal to the header is dropped
func (s *Store) Append(ctx context.Context, rows []checkpoint.Row) error {
	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if isHeader(row, s.header) {
			continue
		}
		docs = append(docs, Document(s.header, row))
	}
	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, err, fmt.Sprintf("failed to insert %d rows", len(docs)))
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Document converts a row to a BSON document keyed by header columns.
// Extra cells beyond the header are dropped.
func Document(header, row checkpoint.Row) bson.D {
	doc := make(bson.D, 0, len(header))
	for i, name := range header {
		if i >= len(row) {
			break
		}
		var value interface{} = row[i]
		if name == checkpoint.ColumnTweetNum {
			if n, err := strconv.Atoi(row[i]); err == nil {
				value = n
			}
		}
		doc = append(doc, bson.E{Key: name, Value: value})
	}
	return doc
}

func isHeader(row, header checkpoint.Row) bool {
	if len(row) != len(header) {
		return false
	}
	for i := range row {
		if row[i] != header[i] {
			return false
		}
	}
	return true
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
