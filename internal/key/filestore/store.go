package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/smallbiznis/keyforge/internal/seed"
	"go.uber.org/zap"
)

// Store keeps the whole registry in one pretty-printed JSON file and rewrites
// it wholesale on every mutation. A single mutex serializes all access, so
// concurrent requests never interleave a read with a partial rewrite.
//
// Sales are not persisted by this backend; Insert drops the sale entry.
type Store struct {
	mu   sync.Mutex
	path string
	keys []domain.LicenseKey
	log  *zap.Logger
}

// New loads the registry from path. A missing or unreadable file starts the
// store empty rather than failing, matching a first-run with no data yet.
func New(path string, log *zap.Logger) *Store {
	s := &Store{path: path, log: log}
	s.keys = s.load()
	return s
}

func (s *Store) load() []domain.LicenseKey {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []domain.LicenseKey{}
	}
	var keys []domain.LicenseKey
	if err := json.Unmarshal(data, &keys); err != nil {
		s.log.Warn("key file unreadable, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []domain.LicenseKey{}
	}
	return keys
}

// flush rewrites the file through a temp file and rename so a crash mid-write
// never leaves a truncated registry behind.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Insert(ctx context.Context, key *domain.LicenseKey, sale *domain.Sale) error {
	_ = sale
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, *key)
	if err := s.flush(); err != nil {
		s.keys = s.keys[:len(s.keys)-1]
		return err
	}
	return nil
}

func (s *Store) FindByValue(ctx context.Context, keyValue string) (*domain.LicenseKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		if s.keys[i].KeyValue == keyValue {
			k := s.keys[i]
			return &k, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUsable(ctx context.Context, keyValue, machineID string, now time.Time) (*domain.LicenseKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		k := s.keys[i]
		if k.KeyValue == keyValue && k.MachineID == machineID && k.Usable(now) {
			return &k, nil
		}
	}
	return nil, nil
}

func (s *Store) ListByCustomer(ctx context.Context, telegram string) ([]domain.LicenseKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LicenseKey, 0)
	for _, k := range s.keys {
		if k.CustomerTelegram == telegram {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	return out, nil
}

func (s *Store) Deactivate(ctx context.Context, id snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.keys {
		if s.keys[i].ID == id {
			if !s.keys[i].IsActive {
				return nil
			}
			s.keys[i].IsActive = false
			if err := s.flush(); err != nil {
				s.keys[i].IsActive = true
				return err
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.Stats{KeyTypeStats: make([]domain.KeyTypeStat, 0)}
	byType := make(map[string]domain.KeyTypeStat)
	for _, k := range s.keys {
		stats.TotalKeys++
		if k.Usable(now) {
			stats.ActiveKeys++
		}
		if !k.ExpiryDate.After(now) {
			stats.ExpiredKeys++
		}
		stats.TotalRevenue += k.Price

		ts := byType[k.KeyType]
		ts.KeyType = k.KeyType
		ts.Count++
		ts.Revenue += k.Price
		byType[k.KeyType] = ts
	}
	for _, ts := range byType {
		stats.KeyTypeStats = append(stats.KeyTypeStats, ts)
	}
	sort.Slice(stats.KeyTypeStats, func(i, j int) bool {
		return stats.KeyTypeStats[i].KeyType < stats.KeyTypeStats[j].KeyType
	})
	return stats, nil
}

// ListTypes serves the built-in catalog; the flat-file backend keeps no
// catalog of its own.
func (s *Store) ListTypes(ctx context.Context) ([]domain.KeyTypeDefinition, error) {
	return seed.DefaultKeyTypes(), nil
}
