// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package regfile is the register file: five width families of named x86-64
// registers, allocated and deallocated by width, exposed to the labeler as a
// flat slice of registers with a used bit per entry.
package regfile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/falcon-lang/falcon/internal/cerr"
)

// Size is the width family a Register belongs to.
type Size int

const (
	Byte  Size = iota // 1 byte
	Word              // 2 bytes
	Dword             // 4 bytes
	Qword             // 8 bytes
	Oword             // 16 bytes (xmm)
)

func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Dword:
		return "dword"
	case Qword:
		return "qword"
	case Oword:
		return "oword"
	default:
		return "?"
	}
}

// SizeToRegSize maps a byte count to its register width family: 1→Byte,
// 2→Word, 4→Dword, 8→Qword, 16→Oword. Any other byte count is a fatal
// labeler error.
func SizeToRegSize(bytes int) Size {
	switch bytes {
	case 1:
		return Byte
	case 2:
		return Word
	case 4:
		return Dword
	case 8:
		return Qword
	case 16:
		return Oword
	default:
		panic(cerr.New("No register size for %d bytes", bytes))
	}
}

// Register is one named physical register slot.
type Register struct {
	Name string
	Size Size
	used bool
}

// File is the static enumeration of every named register, mutated only
// through Allocate/Deallocate/DeallocateAll.
type File struct {
	regs []*Register
}

// New builds a File pre-populated with the five width families: 8 Xmm
// (Oword), 16 Qword, 16 Dword, 16 Word, 16 Byte.
func New() *File {
	f := &File{}
	for _, n := range []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"} {
		f.add(n, Oword)
	}
	for _, n := range []string{"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"} {
		f.add(n, Qword)
	}
	for _, n := range []string{"eax", "ebx", "ecx", "edx", "esi", "edi", "ebp", "esp",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"} {
		f.add(n, Dword)
	}
	for _, n := range []string{"ax", "bx", "cx", "dx", "si", "di", "bp", "sp",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"} {
		f.add(n, Word)
	}
	for _, n := range []string{"al", "bl", "cl", "dl", "sil", "dil", "bpl", "spl",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"} {
		f.add(n, Byte)
	}
	return f
}

func (f *File) add(name string, size Size) {
	f.regs = append(f.regs, &Register{Name: name, Size: size})
}

// Allocate returns the first free register of the requested width, marking
// it used. Exhaustion is fatal.
func (f *File) Allocate(size Size) *Register {
	for _, r := range f.regs {
		if !r.used && r.Size == size {
			r.used = true
			logrus.WithField("register", r.Name).Debug("allocated register")
			return r
		}
	}
	panic(cerr.New("Couldn't find a free register of size: %s", size))
}

// Deallocate frees a previously allocated register.
func (f *File) Deallocate(r *Register) {
	if !r.used {
		panic(cerr.New("Tried to deallocate a non-used register: %s", r.Name))
	}
	r.used = false
	logrus.WithField("register", r.Name).Debug("deallocated register")
}

// DeallocateAll frees every register in the file, as a Pop instruction does
// at the end of a statement that needed temporaries.
func (f *File) DeallocateAll() {
	for _, r := range f.regs {
		r.used = false
	}
}

// Table renders the register file as a three-column listing (label, size,
// used) — the output behind the `--rt` CLI flag.
func (f *File) Table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| %-10s | %-10s | %-6s|\n", "Label:", "Size:", "Used:")
	for _, r := range f.regs {
		fmt.Fprintf(&sb, "| %-10s | %-10s | %-6v|\n", r.Name, r.Size, r.used)
	}
	return sb.String()
}

// Used reports whether r is currently allocated, for tests to inspect
// without exposing the field.
func Used(r *Register) bool { return r.used }

// ByWidth filters the file's registers to a single width, using samber/lo in
// place of a hand-rolled loop.
func (f *File) ByWidth(size Size) []*Register {
	return lo.Filter(f.regs, func(r *Register, _ int) bool { return r.Size == size })
}
