package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// Store persists bid packages content-addressed by the SHA-256 of their
// raw uploaded bytes: packages/{hash}.bin holds the raw bytes,
// packages/{hash}.json the normalized domain.BidPackage sidecar.
type Store struct {
	dir string
}

// NewStore roots a Store at dir, creating it if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apierrors.NewInternal("ingest.NewStore", "package dir init failed", err)
	}
	return &Store{dir: dir}, nil
}

// Hash computes the content address for raw bytes.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (s *Store) binPath(hash string) string  { return filepath.Join(s.dir, hash+".bin") }
func (s *Store) jsonPath(hash string) string { return filepath.Join(s.dir, hash+".json") }

// Exists reports whether a package with this hash is already stored.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.jsonPath(hash))
	return err == nil
}

// Save writes both the raw bytes and the normalized package for hash. It
// is safe to call for a hash that already exists: the write is
// idempotent, matching a content-addressed store's natural semantics.
func (s *Store) Save(hash string, raw []byte, pkg *domain.BidPackage) error {
	if err := os.WriteFile(s.binPath(hash), raw, 0o644); err != nil {
		return apierrors.NewInternal("ingest.Store.Save", "raw bytes write failed", err)
	}
	data, err := json.Marshal(pkg)
	if err != nil {
		return apierrors.NewInternal("ingest.Store.Save", "package marshal failed", err)
	}
	if err := os.WriteFile(s.jsonPath(hash), data, 0o644); err != nil {
		return apierrors.NewInternal("ingest.Store.Save", "package sidecar write failed", err)
	}
	return nil
}

// Load reads the normalized package sidecar for hash.
func (s *Store) Load(hash string) (*domain.BidPackage, error) {
	data, err := os.ReadFile(s.jsonPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.NewNotFound("ingest.Store.Load", "package not found: "+hash)
		}
		return nil, apierrors.NewInternal("ingest.Store.Load", "package read failed", err)
	}
	var pkg domain.BidPackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, apierrors.NewInternal("ingest.Store.Load", "package sidecar corrupt", err)
	}
	return &pkg, nil
}
