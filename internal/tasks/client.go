package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readlater/internal/config"
)

// Client runs maintenance jobs on a backlite queue kept in its own SQLite file,
// so long-running jobs never hold locks on the entries database.
type Client struct {
	client  *backlite.Client
	db      *sql.DB
	workers int

	mu      sync.RWMutex
	started bool
}

// QueueDBPath returns "<dir>/<name>-queue<ext>" for a main database path.
func QueueDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-queue" + ext
}

func NewClient(mainDBPath string, cfg config.Tasks) (*Client, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	db, err := sql.Open("sqlite3", QueueDBPath(mainDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}
	db.SetMaxOpenConns(workers + 4)
	db.SetMaxIdleConns(workers + 1)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install queue schema: %w", err)
	}

	return &Client{client: client, db: db, workers: workers}, nil
}

// Register must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins dispatching queued jobs. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	log.Printf("Maintenance queue started with %d workers", c.workers)
	c.client.Start(ctx)
}

// Stop waits for in-flight jobs until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	ok := c.client.Stop(ctx)
	if ok {
		log.Println("Maintenance queue stopped")
	} else {
		log.Println("Maintenance queue stopped before all jobs completed")
	}
	return ok
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enqueue persists the jobs and returns their ids.
func (c *Client) Enqueue(ctx context.Context, jobs ...backlite.Task) ([]string, error) {
	ids, err := c.client.Add(jobs...).Ctx(ctx).Save()
	if err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	return ids, nil
}

func (c *Client) Status(ctx context.Context, id string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, id)
}

type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Println(append([]any{"[queue] " + message}, params...)...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Println(append([]any{"[queue error] " + message}, params...)...)
}
