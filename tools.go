package asmloader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileExtIs reports whether the extension of filename equals ext, ignoring case. An empty ext matches no extension.
func FileExtIs(filename, ext string) bool {
	e := filepath.Ext(filename)
	if e == "" {
		return ext == ""
	}
	return strings.EqualFold(e[1:], ext)
}

// LooksLikeSource reports whether filename seems to be assembly source rather than machine code.
func LooksLikeSource(filename string) bool {
	return FileExtIs(filename, "asm") || FileExtIs(filename, "nasm")
}

// Assemble src into a flat binary at out with nasm. An empty out replaces the extension of src by .bin.
func Assemble(src, out string) (string, error) {
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + ".bin"
	}
	if _, err := exec.LookPath("nasm"); err != nil {
		return "", fmt.Errorf("missing nasm: %w", err)
	}
	cmd := exec.Command("nasm", "-f", "bin", src, "-o", out)
	Logger().Debug("execute", zap.Strings("args", cmd.Args))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return out, cmd.Run()
}

// GenerateStub writes the Go source of a template variable named name, holding data.
func GenerateStub(w io.Writer, pkg, name, src string, data []byte) (err error) {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("// Code generated by stubgen from %s. DO NOT EDIT.\n\npackage %s\n\nvar %s = []byte{", src, pkg, name))
	for i, b := range data {
		if i%8 == 0 {
			s.WriteString("\n\t")
		} else {
			s.WriteByte(' ')
		}
		s.WriteString(fmt.Sprintf("0x%02x,", b))
	}
	s.WriteString("\n}\n")
	_, err = io.WriteString(w, s.String())
	return
}

// DumpStub writes a hex dump of the stub area of r.
func DumpStub(w io.Writer, r *Region) error {
	if r.Released() {
		return ErrReleased
	}
	d := hex.Dumper(w)
	if _, err := d.Write(r.Bytes()[:r.StubSize()]); err != nil {
		return err
	}
	return d.Close()
}
