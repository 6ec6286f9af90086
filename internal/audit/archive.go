package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chat_economy/internal/models"

	"github.com/klauspost/compress/zstd"
)

// Archive appends audit records to hourly zstd-compressed JSONL files under a directory.
// It is a forensic copy of the transactions relation, not a replacement for it.
type Archive struct {
	baseDir string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewArchive creates an Archive writing under baseDir.
func NewArchive(baseDir string) *Archive {
	return &Archive{baseDir: baseDir, now: time.Now}
}

// Close flushes and closes the current file.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked()
}

// Write appends one record and flushes it to disk as a complete zstd frame.
func (a *Archive) Write(record models.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	hour := a.now().UTC().Format("2006-01-02-15")
	if hour != a.curHour {
		if err := a.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := a.w.Flush(); err != nil {
		return err
	}
	return a.enc.Flush()
}

func (a *Archive) rotateLocked(hour string) error {
	if err := a.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(a.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(a.PathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	a.f = f
	a.enc = enc
	a.w = bufio.NewWriterSize(enc, 64*1024)
	a.curHour = hour
	return nil
}

func (a *Archive) closeLocked() error {
	var err error
	if a.w != nil {
		_ = a.w.Flush()
	}
	if a.enc != nil {
		err = a.enc.Close()
		a.enc = nil
	}
	if a.f != nil {
		_ = a.f.Close()
		a.f = nil
	}
	a.w = nil
	a.curHour = ""
	return err
}

// PathForHour returns the file holding the records of an hour formatted as 2006-01-02-15.
func (a *Archive) PathForHour(hour string) string {
	return filepath.Join(a.baseDir, fmt.Sprintf("audit-%s.jsonl.zst", hour))
}

// ReadArchive decodes every record in an archive file. A file still being written ends
// in an unterminated frame; the records flushed before it are returned.
func ReadArchive(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var records []models.Transaction
	jd := json.NewDecoder(dec)
	for {
		var r models.Transaction
		err := jd.Decode(&r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, r)
	}
}
