package persistence

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"feedgraph/internal/core"
	"feedgraph/internal/graph"
)

const batchSize = 500

// Archiver snapshots the in-memory arena to postgres on shutdown and
// restores it on boot. The snapshot is operational tooling around the store,
// not the substrate the algorithms run against.
type Archiver struct {
	Logger *slog.Logger
	DB     *DB
	Store  *graph.Store
}

func (a *Archiver) Init(ctx context.Context) error {
	a.Logger = a.Logger.With("component", "persistence.Archiver")
	return a.Restore(ctx)
}

func (a *Archiver) Shutdown(ctx context.Context) error {
	return a.Save(ctx)
}

// Save replaces the archived snapshot with the current arena contents.
func (a *Archiver) Save(ctx context.Context) error {
	var (
		entities []EntityModel
		edges    []EdgeModel
		encErr   error
	)

	a.Store.Entities(func(ent *core.Entity, props map[string]any) {
		bytes, err := json.Marshal(props)
		if err != nil {
			encErr = err
			return
		}
		entities = append(entities, EntityModel{
			ID:        string(ent.ID),
			Kind:      string(ent.Kind),
			CreatedAt: ent.CreatedAt,
			Props:     bytes,
		})
	})
	a.Store.Edges(func(edge *core.Edge) {
		var bytes []byte
		if edge.Props != nil {
			var err error
			if bytes, err = json.Marshal(edge.Props); err != nil {
				encErr = err
				return
			}
		}
		edges = append(edges, EdgeModel{
			ID:        string(edge.ID),
			FromID:    string(edge.From),
			ToID:      string(edge.To),
			Family:    string(edge.Family),
			Day:       int64(edge.Day),
			CreatedAt: edge.CreatedAt,
			Props:     bytes,
		})
	})
	if encErr != nil {
		return encErr
	}

	err := a.DB.Gorm().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EdgeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EntityModel{}).Error; err != nil {
			return err
		}
		if len(entities) > 0 {
			if err := tx.CreateInBatches(entities, batchSize).Error; err != nil {
				return err
			}
		}
		if len(edges) > 0 {
			if err := tx.CreateInBatches(edges, batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.Logger.Info("Archived graph", "entities", len(entities), "edges", len(edges))
	return nil
}

// Restore rebuilds the arena from the archived snapshot.
func (a *Archiver) Restore(ctx context.Context) error {
	var entities []EntityModel
	if err := a.DB.Gorm().WithContext(ctx).Find(&entities).Error; err != nil {
		return err
	}

	for _, model := range entities {
		props, err := decodeProps(model.Props)
		if err != nil {
			return err
		}
		a.Store.RestoreEntity(core.Entity{
			ID:        core.EntityID(model.ID),
			Kind:      core.Kind(model.Kind),
			CreatedAt: model.CreatedAt,
		}, props)
	}

	var edges []EdgeModel
	if err := a.DB.Gorm().WithContext(ctx).Find(&edges).Error; err != nil {
		return err
	}

	for _, model := range edges {
		props, err := decodeProps(model.Props)
		if err != nil {
			return err
		}
		err = a.Store.RestoreEdge(core.Edge{
			ID:        core.EdgeID(model.ID),
			From:      core.EntityID(model.FromID),
			To:        core.EntityID(model.ToID),
			Family:    core.Family(model.Family),
			Day:       core.Day(model.Day),
			CreatedAt: model.CreatedAt,
			Props:     props,
		})
		if err != nil {
			return err
		}
	}

	a.Logger.Info("Restored graph", "entities", len(entities), "edges", len(edges))
	return nil
}

// decodeProps revives a JSON property document. Integral numbers come back
// as float64 from encoding/json and are folded to int64, which is the only
// numeric property type the graph uses.
func decodeProps(bytes []byte) (map[string]any, error) {
	if len(bytes) == 0 {
		return nil, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, err
	}

	for k, v := range raw {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			raw[k] = int64(f)
		}
	}
	return raw, nil
}
