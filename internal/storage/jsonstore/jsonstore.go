// Package jsonstore keeps users, shipments and events in one JSON file.
// For single-user demos without PostgreSQL.
package jsonstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

type ids struct {
	User     uint64 `json:"user"`
	Shipment uint64 `json:"shipment"`
	Event    uint64 `json:"event"`
}

type document struct {
	NextIDs   ids                     `json:"next_ids"`
	Users     []*models.User          `json:"users"`
	Shipments []*models.Shipment      `json:"shipments"`
	Events    []*models.TrackingEvent `json:"events"`
}

type Storage struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	doc document
}

func New(path string) (*Storage, error) {
	s := &Storage{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) Close() {}

func (s *Storage) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read json store")
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return errors.Wrap(err, "decode json store")
	}
	return nil
}

// persist пишет во временный файл рядом и переименовывает поверх старого.
// Вызывается под s.mu.
func (s *Storage) persist() error {
	b, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "mkdir json store")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "rename json store")
}

// snapshot/restore откатывают документ, если persist не удался.
func (s *Storage) snapshot() ([]byte, error) {
	return json.Marshal(&s.doc)
}

func (s *Storage) restore(b []byte) {
	var doc document
	if json.Unmarshal(b, &doc) == nil {
		s.doc = doc
	}
}

// commit сохраняет изменения, а при ошибке возвращает документ к снимку.
func (s *Storage) commit(before []byte) error {
	if err := s.persist(); err != nil {
		s.restore(before)
		return err
	}
	return nil
}
