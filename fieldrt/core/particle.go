package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleRecord is one emitted point, assembled from a single index of a ParticleSet.
type ParticleRecord struct {
	Position     mgl32.Vec3
	RestPosition mgl32.Vec3
	PhaseOffset  float32
	Influence    float32
	Color        mgl32.Vec3
}

// ParticleSet stores particles as five parallel attribute arrays (SoA).
// Index i of every array refers to the same particle; order is pixel scan order.
// A set is filled once by its producer and treated as read-only afterwards.
type ParticleSet struct {
	Positions     []mgl32.Vec3
	RestPositions []mgl32.Vec3
	PhaseOffsets  []float32
	Influences    []float32
	Colors        []mgl32.Vec3
}

func NewParticleSet(capacity int) *ParticleSet {
	if capacity < 0 {
		capacity = 0
	}
	return &ParticleSet{
		Positions:     make([]mgl32.Vec3, 0, capacity),
		RestPositions: make([]mgl32.Vec3, 0, capacity),
		PhaseOffsets:  make([]float32, 0, capacity),
		Influences:    make([]float32, 0, capacity),
		Colors:        make([]mgl32.Vec3, 0, capacity),
	}
}

// Append adds one record to every attribute array. Only producers call this.
func (s *ParticleSet) Append(r ParticleRecord) {
	s.Positions = append(s.Positions, r.Position)
	s.RestPositions = append(s.RestPositions, r.RestPosition)
	s.PhaseOffsets = append(s.PhaseOffsets, r.PhaseOffset)
	s.Influences = append(s.Influences, r.Influence)
	s.Colors = append(s.Colors, r.Color)
}

func (s *ParticleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Positions)
}

// Aligned reports whether all five arrays have the same length.
func (s *ParticleSet) Aligned() bool {
	n := len(s.Positions)
	return len(s.RestPositions) == n &&
		len(s.PhaseOffsets) == n &&
		len(s.Influences) == n &&
		len(s.Colors) == n
}

func (s *ParticleSet) Record(i int) ParticleRecord {
	return ParticleRecord{
		Position:     s.Positions[i],
		RestPosition: s.RestPositions[i],
		PhaseOffset:  s.PhaseOffsets[i],
		Influence:    s.Influences[i],
		Color:        s.Colors[i],
	}
}

// Bounds returns the axis-aligned box enclosing all positions.
// ok is false for an empty set.
func (s *ParticleSet) Bounds() (min, max mgl32.Vec3, ok bool) {
	if s.Len() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	min, max = s.Positions[0], s.Positions[0]
	for _, p := range s.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max, true
}

// Translated returns a copy with offset added to positions and to the x/y of rest positions.
// Rest positions keep z == 0.
func (s *ParticleSet) Translated(offset mgl32.Vec3) *ParticleSet {
	out := NewParticleSet(s.Len())
	restOffset := mgl32.Vec3{offset.X(), offset.Y(), 0}
	for i := 0; i < s.Len(); i++ {
		r := s.Record(i)
		r.Position = r.Position.Add(offset)
		r.RestPosition = r.RestPosition.Add(restOffset)
		out.Append(r)
	}
	return out
}

// Centered returns a copy translated so the bounding box center sits at the origin.
func (s *ParticleSet) Centered() *ParticleSet {
	min, max, ok := s.Bounds()
	if !ok {
		return NewParticleSet(0)
	}
	center := min.Add(max).Mul(0.5)
	return s.Translated(center.Mul(-1))
}

// Select returns a new set holding the given indices, in the given order.
func (s *ParticleSet) Select(indices []int) *ParticleSet {
	out := NewParticleSet(len(indices))
	for _, i := range indices {
		out.Append(s.Record(i))
	}
	return out
}

// ParticleVertex matches the per-instance layout in particles.wgsl.
// struct Instance { vec3 position; f32 phase; vec3 rest; f32 influence; vec3 color; f32 pad; }
type ParticleVertex struct {
	Position  [3]float32
	Phase     float32
	Rest      [3]float32
	Influence float32
	Color     [3]float32
	_         float32
}

// Vertices interleaves the set for upload to a vertex buffer.
func (s *ParticleSet) Vertices() []ParticleVertex {
	out := make([]ParticleVertex, s.Len())
	for i := range out {
		out[i] = ParticleVertex{
			Position:  s.Positions[i],
			Phase:     s.PhaseOffsets[i],
			Rest:      s.RestPositions[i],
			Influence: s.Influences[i],
			Color:     s.Colors[i],
		}
	}
	return out
}
