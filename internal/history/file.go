package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/renameio/v2"
)

// FileStore keeps the whole history in one JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and validates the document; a missing file is an empty history
func (s *FileStore) Load(ctx context.Context) (History, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}

	h, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return h, nil
}

// PutSnapshot rewrites the document with date replaced.
// Other dates are carried over as they were read, without re-encoding their records.
func (s *FileStore) PutSnapshot(ctx context.Context, date string, snap Snapshot) error {
	if err := ValidateDate(date); err != nil {
		return err
	}

	data, err := s.read()
	if err != nil {
		return err
	}

	// 손상된 파일 위에 덮어쓰지 않도록 전체 검증 먼저
	if _, err := Decode(data); err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}

	body, err := marshalPlain(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	raw[date] = body

	if err := renameio.WriteFile(s.path, encodeDocument(raw), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// encodeDocument writes dates in ascending order, copying each value's bytes as given
func encodeDocument(raw map[string][]byte) []byte {
	dates := make([]string, 0, len(raw))
	for date := range raw {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, date := range dates {
		if i > 0 {
			buf.WriteString(", ")
		}
		// 날짜 키는 ValidateDate 통과 → 이스케이프 불필요
		fmt.Fprintf(&buf, "%q: ", date)
		buf.Write(raw[date])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func (s *FileStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return data, nil
}
