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
package regfile

import (
	"strings"
	"testing"
)

func TestSizeToRegSizeMapsEveryByteCount(t *testing.T) {
	cases := map[int]Size{1: Byte, 2: Word, 4: Dword, 8: Qword, 16: Oword}
	for bytes, want := range cases {
		if got := SizeToRegSize(bytes); got != want {
			t.Fatalf("SizeToRegSize(%d) = %s, want %s", bytes, got, want)
		}
	}
}

func TestSizeToRegSizeRejectsUnknownWidth(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected SizeToRegSize(3) to panic")
		}
	}()
	SizeToRegSize(3)
}

func TestAllocateReturnsAFreeRegisterOfTheRequestedSize(t *testing.T) {
	f := New()
	r := f.Allocate(Dword)
	if r.Size != Dword {
		t.Fatalf("expected a Dword register, got %s", r.Size)
	}
	if !Used(r) {
		t.Fatalf("expected the allocated register to be marked used")
	}
}

func TestAllocateNeverReturnsTheSameRegisterTwice(t *testing.T) {
	f := New()
	a := f.Allocate(Qword)
	b := f.Allocate(Qword)
	if a.Name == b.Name {
		t.Fatalf("expected two distinct registers, both got %s", a.Name)
	}
}

func TestDeallocateFreesARegisterForReuse(t *testing.T) {
	f := New()
	a := f.Allocate(Byte)
	f.Deallocate(a)
	b := f.Allocate(Byte)
	if a.Name != b.Name {
		t.Fatalf("expected the freed register to be reallocated, got %s then %s", a.Name, b.Name)
	}
}

func TestDeallocateNonUsedRegisterIsFatal(t *testing.T) {
	f := New()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected deallocating a free register to panic")
		}
	}()
	f.Deallocate(f.ByWidth(Word)[0])
}

func TestDeallocateAllFreesEveryFamily(t *testing.T) {
	f := New()
	f.Allocate(Byte)
	f.Allocate(Word)
	f.Allocate(Dword)
	f.Allocate(Qword)
	f.Allocate(Oword)
	f.DeallocateAll()
	for _, size := range []Size{Byte, Word, Dword, Qword, Oword} {
		for _, r := range f.ByWidth(size) {
			if Used(r) {
				t.Fatalf("expected every register to be free after DeallocateAll, %s was still used", r.Name)
			}
		}
	}
}

func TestAllocateExhaustionIsFatal(t *testing.T) {
	f := New()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected exhausting the Oword family to panic")
		}
	}()
	for i := 0; i < len(f.ByWidth(Oword))+1; i++ {
		f.Allocate(Oword)
	}
}

func TestByWidthFiltersToASingleFamily(t *testing.T) {
	f := New()
	words := f.ByWidth(Word)
	if len(words) != 16 {
		t.Fatalf("expected 16 word registers, got %d", len(words))
	}
	for _, r := range words {
		if r.Size != Word {
			t.Fatalf("ByWidth(Word) returned a non-word register: %s (%s)", r.Name, r.Size)
		}
	}
}

func TestTableListsEveryRegister(t *testing.T) {
	f := New()
	table := f.Table()
	if !strings.Contains(table, "rax") || !strings.Contains(table, "xmm0") || !strings.Contains(table, "al") {
		t.Fatalf("expected the table to list registers from every family, got:\n%s", table)
	}
}
