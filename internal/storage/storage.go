package storage

import "context"

// Adapter is a uniform read/write surface over named blobs. A name is a
// slash-separated path relative to the adapter's root (a directory for the
// local implementation, a bucket prefix for object storage).
type Adapter interface {
	// List returns the names of all blobs under prefix, recursively.
	List(ctx context.Context, prefix string) ([]string, error)
	// Read returns the full content of the named blob.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write stores data under name, creating parents as needed and
	// replacing any existing blob.
	Write(ctx context.Context, name string, data []byte) error
}

// ObjectClient is the surface an external object-storage client must expose
// (list/get/put over a bucket+prefix). The real client lives outside this
// module; NewObjectAdapter bridges it onto Adapter.
type ObjectClient interface {
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

type objectAdapter struct {
	client ObjectClient
}

// NewObjectAdapter wraps an object-storage client as an Adapter.
func NewObjectAdapter(client ObjectClient) Adapter {
	return &objectAdapter{client: client}
}

func (o *objectAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	return o.client.ListObjects(ctx, prefix)
}

func (o *objectAdapter) Read(ctx context.Context, name string) ([]byte, error) {
	return o.client.GetObject(ctx, name)
}

func (o *objectAdapter) Write(ctx context.Context, name string, data []byte) error {
	return o.client.PutObject(ctx, name, data)
}
