package wire

import (
	"cmp"
	"slices"
)

// counts come from the peer; never preallocate more than this many elements
// up front.
const maxPrealloc = 1024

func WriteSeq[T any](e *Encoder, items []T, write func(*Encoder, T)) {
	e.Count(len(items))
	for _, item := range items {
		if e.err != nil {
			return
		}
		write(e, item)
	}
}

func ReadSeq[T any](d *Decoder, read func(*Decoder) T) []T {
	n := d.Count()
	if d.err != nil {
		return nil
	}
	items := make([]T, 0, min(n, maxPrealloc))
	for i := uint32(0); i < n; i++ {
		item := read(d)
		if d.err != nil {
			return nil
		}
		items = append(items, item)
	}
	return items
}

// WriteSet writes set items in ascending order according to compare, which
// makes the encoding independent of map iteration order.
func WriteSet[T comparable](e *Encoder, set map[T]struct{}, compare func(a, b T) int, write func(*Encoder, T)) {
	items := make([]T, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	slices.SortFunc(items, compare)
	WriteSeq(e, items, write)
}

// ReadSet collapses duplicate items.
func ReadSet[T comparable](d *Decoder, read func(*Decoder) T) map[T]struct{} {
	n := d.Count()
	if d.err != nil {
		return nil
	}
	set := make(map[T]struct{}, min(n, maxPrealloc))
	for i := uint32(0); i < n; i++ {
		item := read(d)
		if d.err != nil {
			return nil
		}
		set[item] = struct{}{}
	}
	return set
}

// WriteMap writes key/value pairs in ascending key order.
func WriteMap[K cmp.Ordered, V any](e *Encoder, m map[K]V, writeKey func(*Encoder, K), writeVal func(*Encoder, V)) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	e.Count(len(keys))
	for _, k := range keys {
		if e.err != nil {
			return
		}
		writeKey(e, k)
		writeVal(e, m[k])
	}
}

// ReadMap reads count-prefixed key/value pairs. A key that appears more than
// once keeps the value of its last occurrence.
func ReadMap[K comparable, V any](d *Decoder, readKey func(*Decoder) K, readVal func(*Decoder) V) map[K]V {
	n := d.Count()
	if d.err != nil {
		return nil
	}
	m := make(map[K]V, min(n, maxPrealloc))
	for i := uint32(0); i < n; i++ {
		k := readKey(d)
		v := readVal(d)
		if d.err != nil {
			return nil
		}
		m[k] = v
	}
	return m
}
