// Package store archives genome snapshots for diagnostics and later reuse.
package store

import (
	"context"

	"github.com/baldhumanity/neatc/neat"
)

// Record is one archived genome.
type Record struct {
	SchemaVersion int                 `json:"schema_version"`
	CodecVersion  int                 `json:"codec_version"`
	Generation    int                 `json:"generation"`
	Genome        neat.GenomeSnapshot `json:"genome"`
}

// NewRecord wraps a genome snapshot with the current versions.
func NewRecord(generation int, g *neat.Genome) Record {
	return Record{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Generation:    generation,
		Genome:        g.Snapshot(),
	}
}

// ID is the archived genome's id.
func (r Record) ID() string { return r.Genome.ID }

// Store defines persistence operations for genome records.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, record Record) error
	GetGenome(ctx context.Context, id string) (Record, bool, error)
	ListGenomes(ctx context.Context) ([]string, error)
	Close() error
}
