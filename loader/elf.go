// Package loader provides ELF binary loading for ARMv6-M executables.
package loader

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for decoding.
type Program struct {
	// EntryPoint is the virtual address where execution would begin, with
	// the Thumb interworking bit already cleared.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// Code returns the executable segments in file order. These are the
// segments worth feeding to the instruction decoder.
func (p *Program) Code() []Segment {
	var code []Segment
	for _, seg := range p.Segments {
		if seg.Flags&SegmentFlagExecute != 0 {
			code = append(code, seg)
		}
	}
	return code
}

// Load parses a little-endian 32-bit ARM ELF binary and returns a Program
// struct holding its loadable segments.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_ARM {
		return nil, fmt.Errorf("not an ARM ELF file (machine type: %v)", f.Machine)
	}
	if f.ByteOrder != binary.LittleEndian {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	prog := &Program{
		// Bit 0 of the entry point marks a Thumb entry; it is not part of
		// the address.
		EntryPoint: uint32(f.Entry) &^ 1,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		seg := Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		}

		prog.Segments = append(prog.Segments, seg)
	}

	return prog, nil
}
