// Package history persists generated images alongside the parameters
// that produced them.
//
// Every successful generation can be recorded as a Record: the full
// parameter set, the theme flag, the seed (when one was used), the encoded
// PNG, and a thumbnail. The Store interface abstracts the backend:
//   - MemoryStore: development and tests
//   - FileStore: CLI usage, JSON files under the XDG data directory
//   - MongoStore: server deployments
//
// Listing returns lightweight summaries without image payloads; the full
// record (including bytes) is fetched by ID.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

// Record is one persisted generation: parameters plus output.
type Record struct {
	ID        string             `json:"id" bson:"_id"`
	Params    pyramid.Parameters `json:"params" bson:"params"`
	Dark      bool               `json:"dark" bson:"dark"`
	Seed      int64              `json:"seed,omitempty" bson:"seed,omitempty"`
	PNG       []byte             `json:"png" bson:"png"`
	Thumb     []byte             `json:"thumb,omitempty" bson:"thumb,omitempty"`
	PNGSize   int                `json:"png_size" bson:"png_size"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Summary is record metadata without image payloads, used for listings.
type Summary struct {
	ID        string             `json:"id" bson:"_id"`
	Params    pyramid.Parameters `json:"params" bson:"params"`
	Dark      bool               `json:"dark" bson:"dark"`
	Seed      int64              `json:"seed,omitempty" bson:"seed,omitempty"`
	PNGSize   int                `json:"png_size" bson:"png_size"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// NewRecord builds a Record with a fresh UUID and the current time.
func NewRecord(params pyramid.Parameters, dark bool, seed int64, png, thumb []byte) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Params:    params,
		Dark:      dark,
		Seed:      seed,
		PNG:       png,
		Thumb:     thumb,
		PNGSize:   len(png),
		CreatedAt: time.Now().UTC(),
	}
}

// Summary returns the record's listing view.
func (r *Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		Params:    r.Params,
		Dark:      r.Dark,
		Seed:      r.Seed,
		PNGSize:   r.PNGSize,
		CreatedAt: r.CreatedAt,
	}
}

// Store is the interface for history backends.
type Store interface {
	// Save persists a record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID, including image payloads.
	// Returns a RECORD_NOT_FOUND error for unknown IDs.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit summaries, newest first.
	// A non-positive limit returns everything.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a record by ID.
	// Returns a RECORD_NOT_FOUND error for unknown IDs.
	Delete(ctx context.Context, id string) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
