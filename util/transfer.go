package util

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"unsafe"
)

// ZeroCopySource is the read-only view of configuration the collector needs.
type ZeroCopySource interface {
	ZeroCopy() bool
}

// GetTransferables collects the distinct byte buffers reachable from root so
// they can be handed to another goroutine without copying.
//
// It returns nil, meaning "no transfer list", when cfg is nil or has zero-copy
// disabled, when root is nil or has no enumerable properties, and when no
// buffer was found. Otherwise the buffers are returned in depth-first
// discovery order.
//
// Enumerable properties are exported struct fields in declaration order, map
// entries in key order, and the elements of non-byte slices and arrays.
// Pointers and interfaces are followed. Views whose extents overlap are
// reported once, as the union of those extents, in the slot of the earliest
// discovered view. Reference cycles end the branch that revisits them.
func GetTransferables(cfg ZeroCopySource, root any) [][]byte {
	if cfg == nil || !cfg.ZeroCopy() || root == nil {
		return nil
	}

	c := newCollector()
	rv, ok := c.deref(reflect.ValueOf(root))
	if !ok || !c.enter(rv) {
		return nil
	}
	props := properties(rv)
	if len(props) == 0 {
		return nil
	}
	c.push(props)
	c.run()

	if len(c.buffers) == 0 {
		return nil
	}
	// Slots emptied by merges are dropped.
	return slices.DeleteFunc(c.buffers, func(b []byte) bool { return b == nil })
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// extent is the address range [start, end) of a recorded buffer and its slot
// in collector.buffers.
type extent struct {
	start, end uintptr
	slot       int
}

type collector struct {
	stack   []reflect.Value
	visited map[visitKey]struct{}
	// extents is sorted by start and never overlaps.
	extents []extent
	buffers [][]byte
}

func newCollector() *collector {
	return &collector{visited: make(map[visitKey]struct{})}
}

// push schedules props so that props[0] is visited first.
func (c *collector) push(props []reflect.Value) {
	for i := len(props) - 1; i >= 0; i-- {
		c.stack = append(c.stack, props[i])
	}
}

func (c *collector) run() {
	for len(c.stack) > 0 {
		last := len(c.stack) - 1
		v := c.stack[last]
		c.stack[last] = reflect.Value{}
		c.stack = c.stack[:last]

		v, ok := c.deref(v)
		if !ok {
			continue
		}
		if base, kind := resolve(v); kind == KindBinary {
			if base.Kind() == reflect.Slice {
				c.record(base.Bytes())
			}
			continue
		}
		if !c.enter(v) {
			continue
		}
		c.push(properties(v))
	}
}

// deref follows pointers and interfaces, stopping at nil or at a pointer that
// has already been visited.
func (c *collector) deref(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return v, false
			}
			v = v.Elem()
		case reflect.Pointer:
			if v.IsNil() || !c.enter(v) {
				return v, false
			}
			v = v.Elem()
		default:
			return v, true
		}
	}
	return v, false
}

// enter marks reference-typed values as visited and reports whether v was new.
func (c *collector) enter(v reflect.Value) bool {
	var key visitKey
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		key = visitKey{ptr: v.Pointer(), typ: v.Type()}
	case reflect.Slice:
		key = visitKey{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
	default:
		return true
	}
	if _, seen := c.visited[key]; seen {
		return false
	}
	c.visited[key] = struct{}{}
	return true
}

func (c *collector) record(view []byte) {
	if cap(view) == 0 {
		return
	}
	full := view[:cap(view)]
	start := uintptr(unsafe.Pointer(unsafe.SliceData(full)))
	end := start + uintptr(len(full))

	// Extents in [i, j) overlap the view.
	i := sort.Search(len(c.extents), func(k int) bool { return c.extents[k].end > start })
	j := i
	for j < len(c.extents) && c.extents[j].start < end {
		j++
	}
	if i == j {
		c.extents = slices.Insert(c.extents, i, extent{start: start, end: end, slot: len(c.buffers)})
		c.buffers = append(c.buffers, full)
		return
	}

	merged := extent{start: start, end: max(end, c.extents[j-1].end), slot: c.extents[i].slot}
	base := full
	if first := c.extents[i]; first.start < start {
		merged.start = first.start
		base = c.buffers[first.slot]
	}
	for _, e := range c.extents[i:j] {
		merged.slot = min(merged.slot, e.slot)
	}
	for _, e := range c.extents[i:j] {
		if e.slot != merged.slot {
			c.buffers[e.slot] = nil
		}
	}
	// Overlapping ranges lie in one allocation, so the union is addressable
	// from its lowest start.
	c.buffers[merged.slot] = unsafe.Slice(unsafe.SliceData(base), merged.end-merged.start)
	c.extents = slices.Replace(c.extents, i, j, merged)
}

// properties lists the enumerable children of a container value.
func properties(v reflect.Value) []reflect.Value {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		var props []reflect.Value
		for i := range t.NumField() {
			if t.Field(i).IsExported() {
				props = append(props, v.Field(i))
			}
		}
		return props
	case reflect.Map:
		keys := v.MapKeys()
		slices.SortFunc(keys, compareKeys)
		props := make([]reflect.Value, 0, len(keys))
		for _, k := range keys {
			props = append(props, v.MapIndex(k))
		}
		return props
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		props := make([]reflect.Value, 0, v.Len())
		for i := range v.Len() {
			props = append(props, v.Index(i))
		}
		return props
	default:
		return nil
	}
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
