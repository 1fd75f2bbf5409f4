package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS journal_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	base_name TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	attempts INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

func hammer(label, dsn string, execPragmas bool) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if execPragmas {
		for _, p := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
			if _, err := db.Exec(p); err != nil {
				panic(err)
			}
		}
	}
	if _, err := db.Exec(schema); err != nil {
		panic(err)
	}

	ctx := context.Background()
	var busy, other, ok atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 6; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				path := fmt.Sprintf("/in/file_%d_%d.txt", g, i)
				_, err := db.ExecContext(ctx,
					`INSERT INTO journal_entries (path, base_name, status, attempts, created_at, updated_at)
					 VALUES (?, ?, 'pending', 0, '2026', '2026')
					 ON CONFLICT(path) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
					path, filepath.Base(path))
				switch {
				case err == nil:
					ok.Add(1)
				case strings.Contains(err.Error(), "SQLITE_BUSY"):
					busy.Add(1)
				default:
					other.Add(1)
					fmt.Printf("  [%s] other error: %v\n", label, err)
				}
			}
		}(g)
	}
	wg.Wait()
	fmt.Printf("%-28s ok=%d busy=%d other=%d\n", label, ok.Load(), busy.Load(), other.Load())
}

func main() {
	base, err := os.MkdirTemp("", "busy-ab-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(base)

	hammer("exec-pragmas (as store.Open)", filepath.Join(base, "a.db"), true)
	hammer("dsn-pragmas", "file:"+filepath.Join(base, "b.db")+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", false)
}
