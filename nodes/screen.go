package nodes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eaisdo/log"
	"eaisdo/model"
)

var (
	ErrNotConfirmed = errors.New("nodes: delete not confirmed")
	ErrNotFound     = errors.New("nodes: record not found")
	// ErrReload marks a change the registry accepted whose follow-up reload failed.
	ErrReload = errors.New("nodes: reload after change")
)

// Registry is the remote store the screen reads and mutates.
type Registry interface {
	List(ctx context.Context) ([]model.Node, error)
	Create(ctx context.Context, f model.Fields) error
	Update(ctx context.Context, n model.Node) error
	Delete(ctx context.Context, id string) error
}

// Screen is the node list page state: the last loaded collection plus the
// filter, sort and paging selection. Every mutation reloads the full list from
// the registry; nothing is patched locally. Overlapping loads are not
// sequenced, the last one to finish wins.
type Screen struct {
	registry Registry
	emitter  Emitter

	mu        sync.Mutex
	nodes     []model.Node
	districts []string
	statuses  []model.Status
	sortBy    string
	sortDesc  bool
	loading   bool
}

func NewScreen(registry Registry, emitter Emitter) *Screen {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Screen{
		registry: registry,
		emitter:  emitter,
		sortBy:   model.ColumnRegionCode,
	}
}

// Load replaces the collection with the registry's current list. On failure
// the previous collection is kept.
func (s *Screen) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	nodes, err := s.registry.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("nodes: load")
		s.emitter.EmitRegistryError("list", "", err)
		return fmt.Errorf("load nodes: %w", err)
	}
	s.mu.Lock()
	s.nodes = nodes
	s.mu.Unlock()
	return nil
}

func (s *Screen) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// All returns a copy of the unfiltered collection.
func (s *Screen) All() []model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Node(nil), s.nodes...)
}

func (s *Screen) SetDistricts(districts []string) {
	s.mu.Lock()
	s.districts = append([]string(nil), districts...)
	s.mu.Unlock()
}

func (s *Screen) Districts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.districts...)
}

func (s *Screen) SetStatuses(statuses []model.Status) {
	s.mu.Lock()
	s.statuses = append([]model.Status(nil), statuses...)
	s.mu.Unlock()
}

// SetSort picks the table order. An empty column keeps region code ascending.
func (s *Screen) SetSort(column string, desc bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if column == "" {
		column = model.ColumnRegionCode
	}
	s.sortBy, s.sortDesc = column, desc
}

// Filtered is recomputed from the current collection and selection on every call.
func (s *Screen) Filtered() []model.Node {
	s.mu.Lock()
	nodes := s.nodes
	districts, statuses := s.districts, s.statuses
	sortBy, desc := s.sortBy, s.sortDesc
	s.mu.Unlock()

	out := model.FilterByDistrict(nodes, districts)
	out = model.FilterByStatus(out, statuses)
	model.SortNodes(out, sortBy, desc)
	return out
}

// Counts returns the total and filtered collection sizes.
func (s *Screen) Counts() (total, filtered int) {
	return len(s.All()), len(s.Filtered())
}

func (s *Screen) Find(id string) (model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create validates the form, submits it and reloads.
func (s *Screen) Create(ctx context.Context, f Form) error {
	if err := f.Validate(); err != nil {
		return err
	}
	fields := f.Fields()
	if err := s.registry.Create(ctx, fields); err != nil {
		log.Error().Err(err).Str("node", fields.NodeName).Msg("nodes: create")
		s.emitter.EmitRegistryError("create", "", err)
		return fmt.Errorf("create node: %w", err)
	}
	s.emitter.EmitNodeCreated(fields.NodeName, fields.District)
	return s.reload(ctx)
}

// Edit merges the form over the original record, updates it and reloads.
func (s *Screen) Edit(ctx context.Context, original model.Node, f Form) error {
	if err := f.Validate(); err != nil {
		return err
	}
	updated := original.Apply(f.Fields())
	if err := s.registry.Update(ctx, updated); err != nil {
		log.Error().Err(err).Str("id", original.ID).Msg("nodes: update")
		s.emitter.EmitRegistryError("update", original.ID, err)
		return fmt.Errorf("update node: %w", err)
	}
	s.emitter.EmitNodeUpdated(updated.ID, updated.NodeName)
	return s.reload(ctx)
}

// Delete removes a record once the operator has confirmed, then reloads.
func (s *Screen) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.registry.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("nodes: delete")
		s.emitter.EmitRegistryError("delete", id, err)
		return fmt.Errorf("delete node: %w", err)
	}
	s.emitter.EmitNodeDeleted(id)
	return s.reload(ctx)
}

func (s *Screen) reload(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrReload, err)
	}
	return nil
}
