// Package snapshot archives the full structure set to a compressed file at
// shutdown, so a wiped or unreachable backend never loses more than one
// session of decay.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"sunward.gg/internal/model"
)

// Header is stored as a plain JSON line before the gob body so the file can
// be identified with zstdcat | head -1.
type Header struct {
	Version    int       `json:"version"`
	TakenAt    time.Time `json:"takenAt"`
	Owners     int       `json:"owners"`
	Structures int       `json:"structures"`
}

// Archive is the full on-disk snapshot
type Archive struct {
	Header     Header
	Structures map[model.PlayerID]map[model.StructureID]model.StructureRecord
}

// Write stores the structure sets of every owner at path
func Write(path string, takenAt time.Time, structures map[model.PlayerID]map[model.StructureID]model.StructureRecord) error {
	arc := Archive{
		Header: Header{
			Version: 1,
			TakenAt: takenAt.UTC(),
			Owners:  len(structures),
		},
		Structures: structures,
	}
	for _, records := range structures {
		arc.Header.Structures += len(records)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriter(enc)

	hb, _ := json.Marshal(arc.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&arc); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Read loads a snapshot written by Write
func Read(path string) (Archive, error) {
	var arc Archive
	f, err := os.Open(path)
	if err != nil {
		return arc, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return arc, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)

	// Skip the header line; the gob body repeats it.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&arc); err != nil {
		return arc, fmt.Errorf("gob decode: %w", err)
	}
	return arc, nil
}
