package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armv6m/loader"
)

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with a valid ARM Thumb ELF binary", func() {
			var elfPath string

			BeforeEach(func() {
				elfPath = filepath.Join(tempDir, "test.elf")
				createMinimalThumbELF(elfPath, 0x8000, 0x8000, []byte{
					// Simple Thumb code: movs r0, #42; bx lr
					0x2a, 0x20, // movs r0, #42
					0x70, 0x47, // bx lr
				})
			})

			It("should load without error", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog).NotTo(BeNil())
			})

			It("should extract the correct entry point", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint32(0x8000)))
			})

			It("should load segments into memory", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(len(prog.Segments)).To(BeNumerically(">", 0))
			})
		})

		Context("with a Thumb interworking entry point", func() {
			It("should clear bit 0 of the entry address", func() {
				elfPath := filepath.Join(tempDir, "thumb-entry.elf")
				// Linkers set bit 0 on the entry point of Thumb code.
				createMinimalThumbELF(elfPath, 0x8000, 0x8001, []byte{
					0x2a, 0x20, // movs r0, #42
					0x70, 0x47, // bx lr
				})

				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint32(0x8000)))
			})
		})

		Context("with segment data", func() {
			It("should correctly load segment contents", func() {
				elfPath := filepath.Join(tempDir, "code.elf")
				codeData := []byte{
					0x30, 0xb5, // push {r4, r5, lr}
					0x2a, 0x20, // movs r0, #42
					0x30, 0xbd, // pop {r4, r5, pc}
				}
				createMinimalThumbELF(elfPath, 0x8000, 0x8000, codeData)

				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())

				// Find the segment containing our code
				var foundSegment *loader.Segment
				for i := range prog.Segments {
					if prog.Segments[i].VirtAddr == 0x8000 {
						foundSegment = &prog.Segments[i]
						break
					}
				}
				Expect(foundSegment).NotTo(BeNil())
				Expect(foundSegment.Data).To(Equal(codeData))
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.Load("/nonexistent/path/to/file.elf")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to open"))
			})

			It("should return error for non-ELF file", func() {
				notElfPath := filepath.Join(tempDir, "not-elf.bin")
				err := os.WriteFile(notElfPath, []byte("not an elf file"), 0644)
				Expect(err).NotTo(HaveOccurred())

				_, err = loader.Load(notElfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("ELF"))
			})

			It("should return error for empty file", func() {
				emptyPath := filepath.Join(tempDir, "empty.elf")
				err := os.WriteFile(emptyPath, []byte{}, 0644)
				Expect(err).NotTo(HaveOccurred())

				_, err = loader.Load(emptyPath)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a non-ARM ELF", func() {
			It("should return error for x86 ELF", func() {
				elfPath := filepath.Join(tempDir, "x86.elf")
				createMinimalELF32(elfPath, 3, 0, nil) // EM_386

				_, err := loader.Load(elfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not an ARM"))
			})
		})

		Context("with a 64-bit ELF", func() {
			It("should return error for 64-bit ELF", func() {
				elfPath := filepath.Join(tempDir, "elf64.elf")
				createMinimal64BitELF(elfPath)

				_, err := loader.Load(elfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not a 32-bit"))
			})
		})
	})

	Describe("Code", func() {
		It("should return only executable segments", func() {
			elfPath := filepath.Join(tempDir, "multi-segment.elf")
			codeData := []byte{0x2a, 0x20, 0x70, 0x47}
			dataData := []byte{0x01, 0x02, 0x03, 0x04}
			createMultiSegmentThumbELF(elfPath, 0x8000, 0x8000, codeData, 0x20000000, dataData)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			code := prog.Code()
			Expect(code).To(HaveLen(1))
			Expect(code[0].VirtAddr).To(Equal(uint32(0x8000)))
			Expect(code[0].Data).To(Equal(codeData))
		})
	})

	Describe("Segment", func() {
		It("should have correct virtual address", func() {
			elfPath := filepath.Join(tempDir, "test.elf")
			createMinimalThumbELF(elfPath, 0x10000, 0x10000, []byte{0x00, 0xbf})

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			found := false
			for _, seg := range prog.Segments {
				if seg.VirtAddr == 0x10000 {
					found = true
					break
				}
			}
			Expect(found).To(BeTrue())
		})

		It("should correctly report permissions", func() {
			elfPath := filepath.Join(tempDir, "test.elf")
			createMinimalThumbELF(elfPath, 0x8000, 0x8000, []byte{0x00, 0xbf})

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			// At least one segment should be executable (code)
			hasExecutable := false
			for _, seg := range prog.Segments {
				if seg.Flags&loader.SegmentFlagExecute != 0 {
					hasExecutable = true
					break
				}
			}
			Expect(hasExecutable).To(BeTrue())
		})
	})

	Describe("Multi-segment ELFs", func() {
		It("should load multiple PT_LOAD segments", func() {
			elfPath := filepath.Join(tempDir, "multi-segment.elf")
			codeData := []byte{0x30, 0xb5, 0x2a, 0x20, 0x30, 0xbd}
			dataData := []byte{0x01, 0x02, 0x03, 0x04}
			createMultiSegmentThumbELF(elfPath, 0x8000, 0x8000, codeData, 0x20000000, dataData)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(2))

			// Find code and data segments
			var codeSeg, dataSeg *loader.Segment
			for i := range prog.Segments {
				if prog.Segments[i].VirtAddr == 0x8000 {
					codeSeg = &prog.Segments[i]
				}
				if prog.Segments[i].VirtAddr == 0x20000000 {
					dataSeg = &prog.Segments[i]
				}
			}

			Expect(codeSeg).NotTo(BeNil())
			Expect(codeSeg.Data).To(Equal(codeData))
			Expect(codeSeg.Flags & loader.SegmentFlagExecute).NotTo(BeZero())

			Expect(dataSeg).NotTo(BeNil())
			Expect(dataSeg.Data).To(Equal(dataData))
			Expect(dataSeg.Flags & loader.SegmentFlagWrite).NotTo(BeZero())
		})
	})

	Describe("BSS segments", func() {
		It("should handle BSS segments where Memsz > Filesz", func() {
			elfPath := filepath.Join(tempDir, "bss.elf")
			initialData := []byte{0x01, 0x02, 0x03, 0x04}
			memSize := uint32(1024) // Much larger than file data
			createBSSSegmentELF(elfPath, 0x20000000, 0x8000, initialData, memSize)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			// Find the BSS segment
			var bssSeg *loader.Segment
			for i := range prog.Segments {
				if prog.Segments[i].VirtAddr == 0x20000000 {
					bssSeg = &prog.Segments[i]
					break
				}
			}

			Expect(bssSeg).NotTo(BeNil())
			Expect(bssSeg.Data).To(Equal(initialData))
			Expect(bssSeg.MemSize).To(Equal(memSize))
			Expect(bssSeg.MemSize).To(BeNumerically(">", len(bssSeg.Data)))
		})
	})

	Describe("Zero Filesz segments", func() {
		It("should handle segments with zero file size", func() {
			elfPath := filepath.Join(tempDir, "zero-filesz.elf")
			memSize := uint32(4096)
			createBSSSegmentELF(elfPath, 0x20001000, 0x8000, nil, memSize)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			var zeroSeg *loader.Segment
			for i := range prog.Segments {
				if prog.Segments[i].VirtAddr == 0x20001000 {
					zeroSeg = &prog.Segments[i]
					break
				}
			}

			Expect(zeroSeg).NotTo(BeNil())
			Expect(zeroSeg.Data).To(HaveLen(0))
			Expect(zeroSeg.MemSize).To(Equal(memSize))
		})
	})

	Describe("ELFs with no loadable segments", func() {
		It("should return empty segments list for ELF with no PT_LOAD", func() {
			elfPath := filepath.Join(tempDir, "no-load.elf")
			createNoLoadableSegmentsELF(elfPath, 0x8000)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(BeEmpty())
			Expect(prog.EntryPoint).To(Equal(uint32(0x8000)))
		})
	})
})

// writeELF32Header fills in a 52-byte ELF32 header for a little-endian
// executable with the given machine type, entry point, and program
// header count.
func writeELF32Header(machine uint16, entryPoint uint32, phnum uint16) []byte {
	hdr := make([]byte, 52)

	// Magic number
	copy(hdr[0:4], []byte{0x7f, 'E', 'L', 'F'})
	// Class: 32-bit
	hdr[4] = 1
	// Data: little endian
	hdr[5] = 1
	// Version
	hdr[6] = 1
	// Type: executable
	binary.LittleEndian.PutUint16(hdr[16:18], 2)
	// Machine
	binary.LittleEndian.PutUint16(hdr[18:20], machine)
	// Version
	binary.LittleEndian.PutUint32(hdr[20:24], 1)
	// Entry point
	binary.LittleEndian.PutUint32(hdr[24:28], entryPoint)
	// Program header offset (right after ELF header)
	binary.LittleEndian.PutUint32(hdr[28:32], 52)
	// Section header offset (none)
	binary.LittleEndian.PutUint32(hdr[32:36], 0)
	// Flags
	binary.LittleEndian.PutUint32(hdr[36:40], 0)
	// ELF header size
	binary.LittleEndian.PutUint16(hdr[40:42], 52)
	// Program header entry size
	binary.LittleEndian.PutUint16(hdr[42:44], 32)
	// Number of program headers
	binary.LittleEndian.PutUint16(hdr[44:46], phnum)
	// Section header entry size
	binary.LittleEndian.PutUint16(hdr[46:48], 40)
	// Number of section headers
	binary.LittleEndian.PutUint16(hdr[48:50], 0)
	// Section name string table index
	binary.LittleEndian.PutUint16(hdr[50:52], 0)

	return hdr
}

// writeELF32ProgHeader fills in a 32-byte ELF32 program header. Note that
// unlike ELF64, the flags field sits after p_memsz.
func writeELF32ProgHeader(ptype, offset, vaddr, filesz, memsz, flags uint32) []byte {
	phdr := make([]byte, 32)

	binary.LittleEndian.PutUint32(phdr[0:4], ptype)
	binary.LittleEndian.PutUint32(phdr[4:8], offset)
	binary.LittleEndian.PutUint32(phdr[8:12], vaddr)
	binary.LittleEndian.PutUint32(phdr[12:16], vaddr) // paddr
	binary.LittleEndian.PutUint32(phdr[16:20], filesz)
	binary.LittleEndian.PutUint32(phdr[20:24], memsz)
	binary.LittleEndian.PutUint32(phdr[24:28], flags)
	binary.LittleEndian.PutUint32(phdr[28:32], 0x4) // align

	return phdr
}

// createMinimalThumbELF creates a minimal valid 32-bit ARM ELF binary with
// a single executable PT_LOAD segment.
func createMinimalThumbELF(path string, loadAddr, entryPoint uint32, code []byte) {
	elfHeader := writeELF32Header(40, entryPoint, 1) // EM_ARM

	// PT_LOAD, PF_X | PF_R, data right after the headers
	progHeader := writeELF32ProgHeader(1, 52+32, loadAddr,
		uint32(len(code)), uint32(len(code)), 0x5)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()

	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(code)
}

// createMinimalELF32 creates a minimal 32-bit ELF with an arbitrary machine
// type, used to test rejection of non-ARM binaries.
func createMinimalELF32(path string, machine uint16, entryPoint uint32, code []byte) {
	elfHeader := writeELF32Header(machine, entryPoint, 0)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(code)
}

// createMinimal64BitELF creates a minimal 64-bit ELF to test rejection.
func createMinimal64BitELF(path string) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2                                    // 64-bit (ELFCLASS64)
	elfHeader[5] = 1                                    // little endian
	elfHeader[6] = 1                                    // version
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)  // executable
	binary.LittleEndian.PutUint16(elfHeader[18:20], 40) // ARM (won't matter)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)  // version
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64) // phoff
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64) // ehsize
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56) // phentsize
	binary.LittleEndian.PutUint16(elfHeader[56:58], 0)  // phnum

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
}

// createMultiSegmentThumbELF creates an ARM ELF with two PT_LOAD segments:
// a code segment (RX) and a data segment (RW).
func createMultiSegmentThumbELF(path string, codeAddr, entryPoint uint32, code []byte, dataAddr uint32, data []byte) {
	elfHeader := writeELF32Header(40, entryPoint, 2)

	codeOffset := uint32(52 + 32*2)
	progHeader1 := writeELF32ProgHeader(1, codeOffset, codeAddr,
		uint32(len(code)), uint32(len(code)), 0x5) // PF_R | PF_X
	progHeader2 := writeELF32ProgHeader(1, codeOffset+uint32(len(code)), dataAddr,
		uint32(len(data)), uint32(len(data)), 0x6) // PF_R | PF_W

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader1)
	_, _ = file.Write(progHeader2)
	_, _ = file.Write(code)
	_, _ = file.Write(data)
}

// createBSSSegmentELF creates an ARM ELF with a BSS-like segment where
// Memsz > Filesz.
func createBSSSegmentELF(path string, segAddr, entryPoint uint32, data []byte, memSize uint32) {
	elfHeader := writeELF32Header(40, entryPoint, 1)

	progHeader := writeELF32ProgHeader(1, 52+32, segAddr,
		uint32(len(data)), memSize, 0x6) // PF_R | PF_W

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(data)
}

// createNoLoadableSegmentsELF creates an ARM ELF with no PT_LOAD segments
// (only PT_NOTE).
func createNoLoadableSegmentsELF(path string, entryPoint uint32) {
	elfHeader := writeELF32Header(40, entryPoint, 1)

	// PT_NOTE segment (type = 4), not PT_LOAD
	progHeader := writeELF32ProgHeader(4, 52+32, 0, 0, 0, 0x4)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
}
