package transform

// MapResult is the result of mapping a position through a change.
type MapResult struct {
	Pos int
	// Deleted is set when the content around the position was removed.
	Deleted bool
}

// StepMap describes the ranges a single step replaced.
type StepMap struct {
	// ranges holds (start, oldSize, newSize) triples in ascending order.
	ranges []int
}

// EmptyMap is the map of a step that moved no positions.
var EmptyMap = StepMap{}

// NewStepMap returns a map for one replaced range.
func NewStepMap(start, oldSize, newSize int) StepMap {
	if oldSize == 0 && newSize == 0 {
		return EmptyMap
	}
	return StepMap{ranges: []int{start, oldSize, newSize}}
}

// Map maps pos with the given association. With assoc < 0 a position at an
// insertion point stays before the inserted content, otherwise it moves
// after it.
func (m StepMap) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult maps pos and reports whether it was inside replaced content.
func (m StepMap) MapResult(pos, assoc int) MapResult {
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+1], m.ranges[i+2]
		end := start + oldSize
		if pos <= end {
			side := assoc
			switch {
			case oldSize == 0:
			case pos == start:
				side = -1
			case pos == end:
				side = 1
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			return MapResult{Pos: result, Deleted: oldSize > 0 && pos > start && pos < end}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Invert returns the map that undoes m.
func (m StepMap) Invert() StepMap {
	out := StepMap{ranges: make([]int, len(m.ranges))}
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		out.ranges[i] = m.ranges[i] + diff
		out.ranges[i+1] = m.ranges[i+2]
		out.ranges[i+2] = m.ranges[i+1]
		diff += m.ranges[i+2] - m.ranges[i+1]
	}
	return out
}

// Mapping composes step maps in order.
type Mapping struct {
	maps []StepMap
}

// NewMapping returns a mapping over the given maps.
func NewMapping(maps ...StepMap) *Mapping {
	return &Mapping{maps: append([]StepMap(nil), maps...)}
}

// Append adds a map at the end.
func (m *Mapping) Append(sm StepMap) { m.maps = append(m.maps, sm) }

// AppendMapping adds every map of other at the end.
func (m *Mapping) AppendMapping(other *Mapping) {
	if other != nil {
		m.maps = append(m.maps, other.maps...)
	}
}

// Len returns the number of maps.
func (m *Mapping) Len() int { return len(m.maps) }

// Slice returns a mapping over maps [from, Len()).
func (m *Mapping) Slice(from int) *Mapping {
	return NewMapping(m.maps[from:]...)
}

// Map maps pos through every map.
func (m *Mapping) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult maps pos through every map; Deleted is set if any map deleted it.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	deleted := false
	for _, sm := range m.maps {
		r := sm.MapResult(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return MapResult{Pos: pos, Deleted: deleted}
}
