package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedgraph/internal/core"
)

type adjKey struct {
	id     core.EntityID
	family core.Family
	day    core.Day
	dir    core.Direction
}

type famKey struct {
	id     core.EntityID
	family core.Family
	dir    core.Direction
}

type degKey struct {
	id  core.EntityID
	dir core.Direction
}

type lookupKey struct {
	kind  core.Kind
	key   string
	value string
}

// Store is the in-memory arena implementation of core.Graph: entities and
// edges indexed by (entity, family, day, direction). Structural access is
// guarded by a single RWMutex; cross-call balance sequences are serialized by
// the per-entity mutexes behind LockPair.
type Store struct {
	mu sync.RWMutex

	entities map[core.EntityID]*core.Entity
	props    map[core.EntityID]map[string]any
	edges    map[core.EdgeID]*core.Edge
	adj      map[adjKey][]*core.Edge
	famDeg   map[famKey]int
	totalDeg map[degKey]int
	lookup   map[lookupKey]core.EntityID

	lockMu sync.Mutex
	locks  map[core.EntityID]*sync.Mutex
}

func New() *Store {
	s := &Store{}
	s.allocate()
	return s
}

func (s *Store) allocate() {
	s.entities = map[core.EntityID]*core.Entity{}
	s.props = map[core.EntityID]map[string]any{}
	s.edges = map[core.EdgeID]*core.Edge{}
	s.adj = map[adjKey][]*core.Edge{}
	s.famDeg = map[famKey]int{}
	s.totalDeg = map[degKey]int{}
	s.lookup = map[lookupKey]core.EntityID{}
	s.locks = map[core.EntityID]*sync.Mutex{}
}

func (s *Store) Init(_ context.Context) error {
	if s.entities == nil {
		s.allocate()
	}
	return nil
}

func (s *Store) CreateEntity(kind core.Kind, at time.Time) *core.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := &core.Entity{
		ID:        core.EntityID(uuid.NewString()),
		Kind:      kind,
		CreatedAt: at,
	}
	s.entities[ent.ID] = ent
	s.props[ent.ID] = map[string]any{}
	return ent
}

func (s *Store) FindEntity(kind core.Kind, key, value string) (*core.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.lookup[lookupKey{kind, key, value}]
	if !ok {
		return nil, false
	}
	return s.entities[id], true
}

func (s *Store) Entity(id core.EntityID) (*core.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entities[id]
	return ent, ok
}

func (s *Store) Prop(id core.EntityID, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props, ok := s.props[id]
	if !ok {
		return nil, false
	}
	v, ok := props[key]
	return v, ok
}

func (s *Store) SetProp(id core.EntityID, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entities[id]
	if !ok {
		return
	}
	if prev, ok := s.props[id][key].(string); ok {
		delete(s.lookup, lookupKey{ent.Kind, key, prev})
	}
	s.props[id][key] = value
	if str, ok := value.(string); ok {
		s.lookup[lookupKey{ent.Kind, key, str}] = id
	}
}

func (s *Store) AddInt(id core.EntityID, key string, delta int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.props[id]
	if !ok {
		return 0
	}
	n, _ := props[key].(int64)
	n += delta
	props[key] = n
	return n
}

func (s *Store) CreateEdge(from core.EntityID, family core.Family, to core.EntityID, at time.Time, props map[string]any) (*core.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[from]; !ok {
		return nil, fmt.Errorf("%w: edge source %s", core.ErrNotFound, from)
	}
	if _, ok := s.entities[to]; !ok {
		return nil, fmt.Errorf("%w: edge target %s", core.ErrNotFound, to)
	}

	day := core.StaticDay
	if family.DayScoped() {
		day = core.DayOf(at)
	}

	edge := &core.Edge{
		ID:        core.EdgeID(uuid.NewString()),
		From:      from,
		To:        to,
		Family:    family,
		Day:       day,
		CreatedAt: at,
	}
	if len(props) > 0 {
		edge.Props = make(map[string]any, len(props))
		for k, v := range props {
			edge.Props[k] = v
		}
	}

	s.edges[edge.ID] = edge
	s.index(edge, 1)
	return edge, nil
}

func (s *Store) DeleteEdge(id core.EdgeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, ok := s.edges[id]
	if !ok {
		return false
	}
	delete(s.edges, id)
	s.index(edge, -1)
	return true
}

func (s *Store) Edge(id core.EdgeID) (*core.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.edges[id]
	return edge, ok
}

func (s *Store) EdgesOf(id core.EntityID, family core.Family, day core.Day, dir core.Direction) []*core.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.adj[adjKey{id, family, day, dir}]
	out := make([]*core.Edge, len(bucket))
	copy(out, bucket)
	return out
}

func (s *Store) Degree(id core.EntityID, family core.Family, day core.Day, dir core.Direction) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.adj[adjKey{id, family, day, dir}])
}

func (s *Store) FamilyDegree(id core.EntityID, family core.Family, dir core.Direction) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.famDeg[famKey{id, family, dir}]
}

func (s *Store) TotalDegree(id core.EntityID, dir core.Direction) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.totalDeg[degKey{id, dir}]
}

// LockPair acquires per-entity locks in fixed role order, actor first, which
// rules out circular waits between two users acting on each other.
func (s *Store) LockPair(actor, counterparty core.EntityID) func() {
	first := s.entityLock(actor)
	first.Lock()

	if actor == counterparty {
		return first.Unlock
	}

	second := s.entityLock(counterparty)
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func (s *Store) entityLock(id core.EntityID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

// Counts returns entity and edge totals for the metrics gauges.
func (s *Store) Counts() (entities int, edgesByFamily map[core.Family]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edgesByFamily = map[core.Family]int{}
	for _, edge := range s.edges {
		edgesByFamily[edge.Family]++
	}
	return len(s.entities), edgesByFamily
}

// Edges calls f for every edge in the store. Used by the archiver.
func (s *Store) Edges(f func(*core.Edge)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, edge := range s.edges {
		f(edge)
	}
}

// Entities calls f for every entity and its properties. Used by the archiver.
func (s *Store) Entities(f func(*core.Entity, map[string]any)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, ent := range s.entities {
		f(ent, s.props[id])
	}
}

// Restore rebuilds an entity with a known ID, bypassing ID generation.
func (s *Store) RestoreEntity(ent core.Entity, props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := ent
	s.entities[ent.ID] = &stored
	s.props[ent.ID] = map[string]any{}
	for k, v := range props {
		s.props[ent.ID][k] = v
		if str, ok := v.(string); ok {
			s.lookup[lookupKey{ent.Kind, k, str}] = ent.ID
		}
	}
}

// RestoreEdge rebuilds an edge with a known ID. The day bucket is taken from
// the record, not re-derived.
func (s *Store) RestoreEdge(edge core.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[edge.From]; !ok {
		return fmt.Errorf("%w: edge source %s", core.ErrNotFound, edge.From)
	}
	if _, ok := s.entities[edge.To]; !ok {
		return fmt.Errorf("%w: edge target %s", core.ErrNotFound, edge.To)
	}
	stored := edge
	s.edges[edge.ID] = &stored
	s.index(&stored, 1)
	return nil
}

// index adds or removes an edge from the adjacency buckets and degree
// counters. delta is +1 or -1; callers hold mu.
func (s *Store) index(edge *core.Edge, delta int) {
	outKey := adjKey{edge.From, edge.Family, edge.Day, core.Out}
	inKey := adjKey{edge.To, edge.Family, edge.Day, core.In}

	if delta > 0 {
		s.adj[outKey] = append(s.adj[outKey], edge)
		s.adj[inKey] = append(s.adj[inKey], edge)
	} else {
		s.adj[outKey] = removeEdge(s.adj[outKey], edge.ID)
		s.adj[inKey] = removeEdge(s.adj[inKey], edge.ID)
	}

	s.famDeg[famKey{edge.From, edge.Family, core.Out}] += delta
	s.famDeg[famKey{edge.To, edge.Family, core.In}] += delta
	s.totalDeg[degKey{edge.From, core.Out}] += delta
	s.totalDeg[degKey{edge.To, core.In}] += delta
}

func removeEdge(bucket []*core.Edge, id core.EdgeID) []*core.Edge {
	for i, e := range bucket {
		if e.ID == id {
			return append(bucket[:i], bucket[i+1:]...)
		}
	}
	return bucket
}
