package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultBucket is the GridFS bucket used for todo images.
const DefaultBucket = "todo-images"

// GridFSStore keeps objects in a MongoDB GridFS bucket, using the key as
// the GridFS filename.
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

var _ Store = (*GridFSStore)(nil)

// NewGridFSStore connects to uri and opens bucket in database.
func NewGridFSStore(ctx context.Context, uri, database, bucket string) (*GridFSStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	b, err := gridfs.NewBucket(
		client.Database(database),
		options.GridFSBucket().SetName(bucket),
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("opening gridfs bucket %s: %w", bucket, err)
	}

	return &GridFSStore{client: client, bucket: b}, nil
}

// Close disconnects from MongoDB.
func (s *GridFSStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Put uploads r under key. Earlier revisions with the same key are removed
// so that a key always names a single file.
func (s *GridFSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}

	if err := s.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(key, r, opts); err != nil {
		return fmt.Errorf("uploading object %s: %w", key, err)
	}
	return nil
}

// Open returns a download stream for key.
func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := s.bucket.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}

	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}
	return stream, nil
}

// Delete removes every file stored under key.
func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.bucket.SetReadDeadline(deadline(ctx)); err != nil {
		return fmt.Errorf("setting read deadline: %w", err)
	}

	cursor, err := s.bucket.Find(bson.M{"filename": key})
	if err != nil {
		return fmt.Errorf("finding object %s: %w", key, err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("reading object %s: %w", key, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("object %s: %w", key, ErrNotFound)
	}

	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("deleting object %s: %w", key, err)
		}
	}
	return nil
}

// deadline converts a context deadline to the bucket's deadline form. The
// zero time clears any deadline.
func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Time{}
}
