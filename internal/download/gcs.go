// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
)

// GCSFetcher reads gs://bucket/object URLs with Application Default
// Credentials. The storage client is created on first use so runs that never
// touch GCS need no credentials.
type GCSFetcher struct {
	once   sync.Once
	client *storage.Client
	err    error
}

func (g *GCSFetcher) storageClient() (*storage.Client, error) {
	g.once.Do(func() {
		g.client, g.err = storage.NewClient(context.Background())
	})
	return g.client, g.err
}

// Fetch opens a reader on the object.
func (g *GCSFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	bucket, object, err := splitGCS(rawURL)
	if err != nil {
		return nil, err
	}
	client, err := g.storageClient()
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	return r, nil
}

// Close releases the storage client if one was created.
func (g *GCSFetcher) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
