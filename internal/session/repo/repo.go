// Package repo persists the console session snapshot so a restarted console
// resumes where it left off.
package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// Repo stores a single snapshot. Load returns an empty snapshot, not an
// error, when nothing was saved yet.
type Repo interface {
	Load(ctx context.Context) (entity.Snapshot, error)
	Save(ctx context.Context, s entity.Snapshot) error
	Clear(ctx context.Context) error
}

// Memory keeps the snapshot in process. Used when persistence is off and in tests.
type Memory struct {
	snap  entity.Snapshot
	Saves int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (entity.Snapshot, error) { return m.snap, nil }

func (m *Memory) Save(ctx context.Context, s entity.Snapshot) error {
	m.snap = s
	m.Saves++
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.snap = entity.Snapshot{}
	m.Saves++
	return nil
}
