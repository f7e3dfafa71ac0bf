package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pitabwire/util"
	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("no database configured")

type pool struct {
	readIdx     uint64       // atomic counter for round-robin
	writeIdx    uint64       // atomic counter for round-robin
	mu          sync.RWMutex // protects db slices
	allReadDBs  []*gorm.DB
	allWriteDBs []*gorm.DB
}

func NewPool(_ context.Context) Pool {
	return &pool{
		allReadDBs:  []*gorm.DB{},
		allWriteDBs: []*gorm.DB{},
	}
}

// AddConnection opens dsn and adds it to the pool.
func (s *pool) AddConnection(ctx context.Context, dsn string, readOnly bool, opts ...Option) error {
	db, err := s.createConnection(ctx, dsn, opts...)
	if err != nil {
		return err
	}

	s.AddDB(db, readOnly)
	return nil
}

func (s *pool) AddDB(db *gorm.DB, readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if readOnly {
		s.allReadDBs = append(s.allReadDBs, db)
	} else {
		s.allWriteDBs = append(s.allWriteDBs, db)
	}
}

func (s *pool) Close(ctx context.Context) {
	s.mu.Lock()
	dbs := append(append([]*gorm.DB(nil), s.allReadDBs...), s.allWriteDBs...)
	s.allReadDBs = nil
	s.allWriteDBs = nil
	s.mu.Unlock()

	for _, db := range dbs {
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		util.CloseAndLogOnError(ctx, sqlDB, "could not close database connection")
	}
}

// DB returns the next database in round-robin order. Read-only requests fall back to a
// writable database when no replica is configured; nil is returned when the pool is empty.
func (s *pool) DB(ctx context.Context, readOnly bool) *gorm.DB {
	var selectedDB *gorm.DB

	s.mu.RLock()
	if readOnly {
		selectedDB = s.selectOne(s.allReadDBs, &s.readIdx)
	}
	if selectedDB == nil {
		selectedDB = s.selectOne(s.allWriteDBs, &s.writeIdx)
	}
	s.mu.RUnlock()

	if selectedDB == nil {
		return nil
	}

	return selectedDB.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
}

// selectOne uses atomic round-robin for high concurrency.
func (s *pool) selectOne(dbs []*gorm.DB, idx *uint64) *gorm.DB {
	if len(dbs) == 0 {
		return nil
	}
	pos := atomic.AddUint64(idx, 1)
	return dbs[int(pos-1)%len(dbs)] //nolint:gosec // G115: index is result of (val % len), always < len and fits in int.
}
