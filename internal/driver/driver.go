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

// Package driver assembles and links the emitter's NASM text into a native
// executable, invoking `nasm` and `ld` via os/exec. It is kept thin and
// honest rather than a full toolchain driver.
package driver

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CommandExists reports whether name is resolvable on PATH, used as a guard
// before shelling out to an external toolchain binary.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Assemble writes asm to <outDir>/<name>.s and runs `nasm -f elf64` over it,
// producing <name>.o.
func Assemble(outDir, name, asm string) (string, error) {
	asmPath := filepath.Join(outDir, name+".s")
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", asmPath)
	}
	if !CommandExists("nasm") {
		return "", errors.New("nasm not found on PATH")
	}
	objPath := filepath.Join(outDir, name+".o")
	cmd := exec.Command("nasm", "-f", "elf64", asmPath, "-o", objPath)
	logrus.WithField("cmd", cmd.String()).Debug("running nasm")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errors.Wrapf(err, "nasm failed: %s", out)
	}
	return objPath, nil
}

// Link runs `ld` over objPath, producing the final executable at outPath.
func Link(objPath, outPath string) error {
	if !CommandExists("ld") {
		return errors.New("ld not found on PATH")
	}
	cmd := exec.Command("ld", objPath, "-o", outPath)
	logrus.WithField("cmd", cmd.String()).Debug("running ld")
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "ld failed: %s", out)
	}
	return nil
}
