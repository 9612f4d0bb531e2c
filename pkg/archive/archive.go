// Package archive keeps finished games in a kv.Store.
//
// Records are msgpack-encoded under {prefix, id}, where id is a UUIDv7:
// ids sort by creation time, so a reverse listing yields the newest games
// first.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/kv"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultPrefix is the key prefix used when Archive.Prefix is empty.
const DefaultPrefix = "games"

// Record is one archived game.
type Record struct {
	ID         string      `json:"id" yaml:"id" msgpack:"id"`
	PlayedAt   time.Time   `json:"played_at" yaml:"played_at" msgpack:"played_at"`
	Mode       string      `json:"mode,omitempty" yaml:"mode,omitempty" msgpack:"mode,omitempty"`
	Model      string      `json:"model,omitempty" yaml:"model,omitempty" msgpack:"model,omitempty"`
	Solved     bool        `json:"solved" yaml:"solved" msgpack:"solved"`
	Celebrity  string      `json:"celebrity,omitempty" yaml:"celebrity,omitempty" msgpack:"celebrity,omitempty"`
	Turns      []game.Turn `json:"turns" yaml:"turns" msgpack:"turns"`
	Reflection string      `json:"reflection,omitempty" yaml:"reflection,omitempty" msgpack:"reflection,omitempty"`
}

// NewRecord captures an outcome. mode names the front end ("text", "voice").
func NewRecord(out *game.Outcome, mode, model, celebrity string) Record {
	return Record{
		PlayedAt:   time.Now().UTC(),
		Mode:       mode,
		Model:      model,
		Solved:     out.Solved,
		Celebrity:  celebrity,
		Turns:      out.Transcript.Turns(),
		Reflection: out.Reflection,
	}
}

// Archive stores Records.
type Archive struct {
	Store  kv.Store
	Prefix string
}

// New returns an Archive over store using DefaultPrefix.
func New(store kv.Store) *Archive {
	return &Archive{Store: store}
}

func (a *Archive) prefix() kv.Key {
	if a.Prefix != "" {
		return kv.Key{a.Prefix}
	}
	return kv.Key{DefaultPrefix}
}

// Save assigns rec an id when it has none, stores it and returns the id.
func (a *Archive) Save(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("archive: new id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return "", fmt.Errorf("archive: encode %s: %w", rec.ID, err)
	}
	if err := a.Store.Set(ctx, append(a.prefix(), rec.ID), data); err != nil {
		return "", fmt.Errorf("archive: save %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// Get loads one record. It returns kv.ErrNotFound, wrapped, for unknown ids.
func (a *Archive) Get(ctx context.Context, id string) (*Record, error) {
	data, err := a.Store.Get(ctx, append(a.prefix(), id))
	if err != nil {
		return nil, fmt.Errorf("archive: get %s: %w", id, err)
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", id, err)
	}
	return &rec, nil
}

// List returns up to limit records, newest first. A non-positive limit
// returns all of them.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	var recs []Record
	for e, err := range a.Store.List(ctx, a.prefix(), kv.ListOptions{Reverse: true, Limit: max(limit, 0)}) {
		if err != nil {
			return recs, fmt.Errorf("archive: list: %w", err)
		}
		var rec Record
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return recs, fmt.Errorf("archive: decode %s: %w", e.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
