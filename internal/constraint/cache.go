package constraint

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"
)

// Cache memoizes Implies decisions across process runs. The decision
// procedure in implies.go is recursive and the same (lhs, rhs) pair tends
// to recur heavily across a large program (the same guard re-checked at
// every call site of a hot function); persisting results to sqlite lets
// that work outlive a single process. cmd/refinex's -cache flag opens (and
// creates) such a database, but the evaluator calls Implies directly, not
// ImpliesCached, so nothing is read from or written to it during a run.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenCache opens (creating if necessary) a sqlite database at path and
// ensures its schema exists.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS implies_cache (
		lhs    TEXT NOT NULL,
		rhs    TEXT NOT NULL,
		result INTEGER NOT NULL,
		PRIMARY KEY (lhs, rhs)
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// ImpliesCached is Implies memoized through the cache. The read-or-compute
// sequence is serialized by mu so two calls racing on the same key don't
// both fall through to Implies and issue duplicate inserts; Implies itself
// is pure and side-effect-free, so correctness never depends on this lock,
// only cache hygiene does.
func (c *Cache) ImpliesCached(a, b Constraint) bool {
	keyA, keyB := a.String(), b.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	var result int
	switch err := c.db.QueryRow(`SELECT result FROM implies_cache WHERE lhs = ? AND rhs = ?`, keyA, keyB).Scan(&result); err {
	case nil:
		return result != 0
	case sql.ErrNoRows:
		// fall through to compute
	default:
		return Implies(a, b)
	}

	computed := Implies(a, b)
	stored := 0
	if computed {
		stored = 1
	}
	_, _ = c.db.Exec(`INSERT OR REPLACE INTO implies_cache (lhs, rhs, result) VALUES (?, ?, ?)`, keyA, keyB, stored)
	return computed
}
