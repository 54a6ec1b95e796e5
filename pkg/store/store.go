// Package store persists template documents.
//
// Every backend implements [Store]:
//   - memory: in-process map for tests and throwaway servers
//   - file: one JSON document per template in a directory (CLI default)
//   - sqlite, postgres, mysql: a single table via database/sql
//   - redis: one key per template plus an index set
//   - mongo: one BSON document per template
//
// Saves are unconditional: Put overwrites whatever is stored under the id,
// with no optimistic locking or merging.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/template"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Backends lists every backend name in display order.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres, BackendMySQL, BackendRedis, BackendMongo}

// Summary describes a stored template without its frames.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Frames    int       `json:"frames" bson:"frames"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for template storage backends.
type Store interface {
	// Get returns the template stored under id, or TEMPLATE_NOT_FOUND.
	Get(ctx context.Context, id string) (*template.Document, error)

	// Put stores doc under id, replacing any previous template.
	Put(ctx context.Context, id string, doc *template.Document) error

	// Delete removes a template, or fails with TEMPLATE_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// List returns all stored templates ordered by id.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the directory for the file backend.
	Path string

	// DSN is the data source name for SQL backends.
	DSN string

	// URL is the connection URL for redis and mongo.
	URL string

	// Database is the mongo database name.
	Database string

	// Prefix namespaces redis keys.
	Prefix string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case "", BackendFile:
		return NewFileStore(opts.Path)
	case BackendSQLite, BackendPostgres, BackendMySQL:
		return OpenSQL(ctx, opts.Backend, opts.DSN)
	case BackendRedis:
		return NewRedisStore(ctx, opts.URL, opts.Prefix)
	case BackendMongo:
		return NewMongoStore(ctx, opts.URL, opts.Database)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want one of %v)", opts.Backend, Backends)
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeTemplateNotFound, "template %s not found", id)
}

// checkPut validates the arguments of a Put.
func checkPut(id string, doc *template.Document) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document cannot be nil")
	}
	return nil
}

// encode renders doc in the current wire format.
func encode(doc *template.Document) ([]byte, error) {
	data, err := template.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	return data, nil
}

func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
}
