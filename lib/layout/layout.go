// Package layout computes the byte offsets of a set of components packed
// after a fixed header into one allocation, each honoring its own alignment.
// It is pure and allocation-free, used wherever a component wants to pack
// several sub-arrays into one aligned block (notably the slab allocator's
// header + object region).
package layout

import "github.com/JMaximus76/filesync/fs/ferrors"

// Component describes one (size, align, count) group to place after the
// header.
type Component struct {
	Size  uintptr
	Align uintptr
	Count uintptr
}

// Plan is the computed result: one offset per input Component, the total
// size of the packed region, and the master alignment (the largest
// alignment among header and components).
type Plan struct {
	Offsets     []uintptr
	TotalBytes  uintptr
	MasterAlign uintptr
}

func isPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

func roundUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// Compute lays out headerSize/headerAlign followed by each component in
// order, starting each component's offset at round_up(cursor, align) and
// advancing the cursor by offset + size*count.
//
// Fails with ferrors.KindArg if headerSize is 0, any alignment is not a
// power of two, or any component has a zero size or count.
func Compute(headerSize, headerAlign uintptr, components []Component) (Plan, error) {
	if headerSize == 0 {
		return Plan{}, ferrors.New(ferrors.KindArg)
	}
	if headerAlign == 0 || !isPowerOfTwo(headerAlign) {
		return Plan{}, ferrors.New(ferrors.KindArg)
	}

	master := headerAlign
	offsets := make([]uintptr, len(components))
	cursor := headerSize

	for i, c := range components {
		if c.Size == 0 || c.Count == 0 {
			return Plan{}, ferrors.New(ferrors.KindArg)
		}
		if c.Align == 0 || !isPowerOfTwo(c.Align) {
			return Plan{}, ferrors.New(ferrors.KindArg)
		}

		offset := roundUp(cursor, c.Align)
		offsets[i] = offset
		cursor = offset + c.Size*c.Count

		if c.Align > master {
			master = c.Align
		}
	}

	return Plan{Offsets: offsets, TotalBytes: cursor, MasterAlign: master}, nil
}
