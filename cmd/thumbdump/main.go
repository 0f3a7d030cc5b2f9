// Package main provides the entry point for thumbdump.
// Thumbdump decodes ARMv6-M Thumb machine code from an ELF executable or a
// flat binary image and prints each decoded instruction.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/sarchlab/armv6m/insts"
	"github.com/sarchlab/armv6m/loader"
)

var (
	base    = flag.Uint("base", 0, "Load address for flat binary input")
	verbose = flag.Bool("v", false, "Verbose output (trace decoder internals)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: thumbdump [options] <program.elf | code.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	data, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	var opts []insts.DecoderOption
	if *verbose {
		opts = append(opts,
			insts.WithTraceLogger(insts.NewWriterTraceLogger(os.Stderr, insts.SeverityDebug)))
	}
	decoder := insts.NewDecoder(opts...)

	if isELF(data) {
		dumpELF(decoder, programPath)
	} else {
		dumpStream(decoder, uint32(*base), data)
	}
}

// isELF reports whether the file starts with the ELF magic number.
func isELF(data []byte) bool {
	return len(data) >= 4 &&
		data[0] == 0x7f && data[1] == 'E' && data[2] == 'L' && data[3] == 'F'
}

// dumpELF loads an ELF executable and dumps every executable segment.
func dumpELF(decoder *insts.Decoder, path string) {
	prog, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", path)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	code := prog.Code()
	if len(code) == 0 {
		fmt.Fprintf(os.Stderr, "No executable segments in %s\n", path)
		os.Exit(1)
	}

	for _, seg := range code {
		fmt.Printf("\nSegment at 0x%08X (%d bytes):\n", seg.VirtAddr, len(seg.Data))
		dumpStream(decoder, seg.VirtAddr, seg.Data)
	}
}

// dumpStream walks a Thumb code stream, printing each decoded instruction.
// Undecodable halfwords are reported and skipped so that a single bad word
// does not hide the rest of the segment.
func dumpStream(decoder *insts.Decoder, addr uint32, data []byte) {
	for offset := 0; offset < len(data); {
		in, err := decoder.Parse(data[offset:])
		if err != nil {
			fmt.Printf("%08x: ???? decode error: %v\n", addr+uint32(offset), err)
			offset += 2
			continue
		}

		fmt.Printf("%08x: %s %s\n",
			addr+uint32(offset), rawBytes(data[offset:offset+int(in.Width.Bytes())]),
			spew.Sprintf("%#v", in.Operation))
		offset += int(in.Width.Bytes())
	}
}

// rawBytes formats the encoding bytes of one instruction, padded so 16-bit
// and 32-bit encodings line up in the output.
func rawBytes(data []byte) string {
	s := ""
	for _, b := range data {
		s += fmt.Sprintf("%02x", b)
	}
	return fmt.Sprintf("%-8s", s)
}
