package snapshot

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps the collections in one JSON document, keyed like browser local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	b, err := ioutil.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, errors.Wrap(err, "reading snapshot file")
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err = json.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing snapshot file")
	}
	return doc, nil
}

func (s *FileStore) Load(_ context.Context) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	data := make(map[string][]byte, len(doc))
	for k, v := range doc {
		data[k] = []byte(v)
	}
	return data, nil
}

// Save merges data into the document and replaces the file atomically.
func (s *FileStore) Save(_ context.Context, data map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		doc = make(map[string]json.RawMessage)
	}
	for k, v := range data {
		if !json.Valid(v) {
			return errors.Errorf("saving %s: invalid JSON", k)
		}
		doc[k] = json.RawMessage(v)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding snapshot file")
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating snapshot dir")
		}
	}

	tmp, err := ioutil.TempFile(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing snapshot file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing snapshot file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing snapshot file")
}

func (s *FileStore) Close() error { return nil }
