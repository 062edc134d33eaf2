// Package resonance manages a population of triadic entities and measures
// how they align: pairwise resonance, clusters, collective state, emergence
// potential and coupled cascade dynamics.
package resonance

import (
	"sort"

	"github.com/danielpatrickdp/triad-field/internal/graph"
	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region field
// Field owns a set of entities keyed by id. Entities are copied in and out;
// all mutation goes through Field methods. A Field is not safe for
// concurrent use.
type Field struct {
	config   FieldConfig
	entities map[string]Entity
}

// NewField creates an empty field.
func NewField(config FieldConfig) *Field {
	return &Field{config: config, entities: make(map[string]Entity)}
}

// Config returns the field's configuration.
func (f *Field) Config() FieldConfig {
	return f.config
}

// #endregion field

// #region entity-management
// Add inserts e, replacing any entity with the same id.
func (f *Field) Add(e Entity) {
	f.entities[e.ID] = e
}

// Remove deletes the entity with the given id. Absent ids are ignored.
func (f *Field) Remove(id string) {
	delete(f.entities, id)
}

// Update overwrites the state of an existing entity. Absent ids are ignored.
func (f *Field) Update(id string, pattern, intent, presence float64) {
	e, ok := f.entities[id]
	if !ok {
		return
	}
	e.Triad = metrics.Triad{Pattern: pattern, Intent: intent, Presence: presence}
	f.entities[id] = e
}

// Get returns a copy of the entity with the given id.
func (f *Field) Get(id string) (Entity, bool) {
	e, ok := f.entities[id]
	return e, ok
}

// Len is the number of entities.
func (f *Field) Len() int {
	return len(f.entities)
}

// Entities returns copies of all entities ordered by id.
func (f *Field) Entities() []Entity {
	out := make([]Entity, 0, len(f.entities))
	for _, e := range f.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CoherentEntities returns copies of the coherent entities ordered by id.
func (f *Field) CoherentEntities() []Entity {
	return coherentOf(f.Entities())
}

func coherentOf(all []Entity) []Entity {
	var out []Entity
	for _, e := range all {
		if e.Coherent() {
			out = append(out, e)
		}
	}
	return out
}

// #endregion entity-management

// #region snapshot
// snapshot is a read-only view of the field from which every derived
// product is computed, so a report sees one consistent population.
type snapshot struct {
	config   FieldConfig
	all      []Entity
	coherent []Entity
	matrix   Matrix
}

func (f *Field) snapshot() snapshot {
	all := f.Entities()
	return snapshot{
		config:   f.config,
		all:      all,
		coherent: coherentOf(all),
		matrix:   matrixOf(all),
	}
}

func matrixOf(all []Entity) Matrix {
	m := make(Matrix, len(all)*(len(all)-1))
	for i, a := range all {
		for _, b := range all[i+1:] {
			r := metrics.ResonanceCoefficient(a.Triad, b.Triad)
			m[Pair{a.ID, b.ID}] = r
			m[Pair{b.ID, a.ID}] = r
		}
	}
	return m
}

// #endregion snapshot

// #region derived
// FieldCoherence is the mean strength of the coherent entities, 0 if none.
func (f *Field) FieldCoherence() float64 {
	return f.snapshot().coherence()
}

// ResonanceMatrix computes the resonance of every pair of entities,
// coherent or not, keyed by both orderings.
func (f *Field) ResonanceMatrix() Matrix {
	return matrixOf(f.Entities())
}

// Clusters returns groups of at least two entities connected by resonance
// >= threshold. Each group is sorted by id.
func (f *Field) Clusters(threshold float64) [][]string {
	return f.snapshot().clusters(threshold)
}

// ClusterOf returns the ids reachable from id through resonance >= threshold,
// starting with id itself. Absent ids yield nil.
func (f *Field) ClusterOf(id string, threshold float64) []string {
	s := f.snapshot()
	return s.graph(threshold).Walk(id, len(s.all), threshold)
}

// CollectiveState is the strength-weighted mean of the coherent entities.
func (f *Field) CollectiveState() (metrics.Triad, bool) {
	return f.snapshot().collective()
}

// EmergencePotential blends population size, mean positive resonance and
// field coherence into a score in [0, 1].
func (f *Field) EmergencePotential() float64 {
	return f.snapshot().emergence()
}

// Leader returns the coherent entity with the highest blend of own strength
// and mean resonance with the other coherent entities.
func (f *Field) Leader() (Entity, bool) {
	return f.snapshot().leader()
}

func (s snapshot) coherence() float64 {
	if len(s.coherent) == 0 {
		return 0
	}
	var sum float64
	for _, e := range s.coherent {
		sum += e.Strength()
	}
	return sum / float64(len(s.coherent))
}

func (s snapshot) graph(threshold float64) *graph.Graph {
	ids := make([]string, len(s.all))
	for i, e := range s.all {
		ids[i] = e.ID
	}
	g := graph.New(ids...)
	for p, r := range s.matrix {
		if r >= threshold && p.A < p.B {
			g.AddEdge(p.A, p.B, r)
		}
	}
	return g
}

func (s snapshot) clusters(threshold float64) [][]string {
	if len(s.all) < 2 {
		return nil
	}
	return s.graph(threshold).Components(2)
}

func (s snapshot) collective() (metrics.Triad, bool) {
	if len(s.coherent) == 0 {
		return metrics.Triad{}, false
	}
	var total float64
	var acc metrics.Triad
	for _, e := range s.coherent {
		w := e.Strength()
		total += w
		acc.Pattern += e.Pattern * w
		acc.Intent += e.Intent * w
		acc.Presence += e.Presence * w
	}
	if total == 0 {
		return metrics.Triad{}, false
	}
	return metrics.Triad{Pattern: acc.Pattern / total, Intent: acc.Intent / total, Presence: acc.Presence / total}, true
}

// meanPositiveResonance averages the strictly positive matrix entries. Both
// orderings hold the same value, so each unordered pair is visited once, in
// id order, to keep the sum reproducible.
func (s snapshot) meanPositiveResonance() (float64, bool) {
	var sum float64
	var n int
	for i, a := range s.all {
		for _, b := range s.all[i+1:] {
			if r := s.matrix.Get(a.ID, b.ID); r > 0 {
				sum += r
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (s snapshot) emergence() float64 {
	if len(s.coherent) < 2 || len(s.matrix) == 0 {
		return 0
	}
	saturation := float64(s.config.EmergenceSaturation)
	if saturation <= 0 {
		saturation = 1
	}
	nFactor := float64(len(s.coherent)) / saturation
	if nFactor > 1 {
		nFactor = 1
	}
	avgResonance, _ := s.meanPositiveResonance()
	return nFactor*0.3 + avgResonance*0.4 + s.coherence()*0.3
}

func (s snapshot) leader() (Entity, bool) {
	if len(s.coherent) == 0 || len(s.matrix) == 0 {
		return Entity{}, false
	}
	var best Entity
	bestScore := 0.0
	for i, e := range s.coherent {
		var sum float64
		for _, o := range s.coherent {
			if o.ID != e.ID {
				sum += s.matrix.Get(e.ID, o.ID)
			}
		}
		avg := 0.0
		if others := len(s.coherent) - 1; others > 0 {
			avg = sum / float64(others)
		}
		score := e.Strength()*0.5 + avg*0.5
		if i == 0 || score > bestScore {
			best, bestScore = e, score
		}
	}
	return best, true
}

// #endregion derived

// #region synchronize
// SynchronizeTowards moves every coherent entity a fraction strength of the
// way toward target. Void entities are left untouched.
func (f *Field) SynchronizeTowards(target metrics.Triad, strength float64) {
	for id, e := range f.entities {
		if !e.Coherent() {
			continue
		}
		e.Triad = e.Lerp(target, strength)
		f.entities[id] = e
	}
}

// #endregion synchronize
