package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
	"github.com/gamassss/utm-tracker/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertURL = `
	INSERT INTO urls (short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

var (
	cities    = []string{"Jakarta", "Bandung", "Surabaya", "Medan", "Singapore", "Tokyo", "Berlin", ""}
	countries = []string{"ID", "ID", "ID", "ID", "SG", "JP", "DE", ""}
	agents    = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36",
		"curl/8.5.0",
	}
)

// tier is a band of records sharing an id prefix and a traffic profile.
type tier struct {
	prefix    string
	count     int
	visitors  int
	revisits  int
	createdBy time.Duration
}

type DataGenerator struct {
	pool      *pgxpool.Pool
	batchSize int
	workers   int
	now       time.Time
}

func main() {
	hot := flag.Int("hot", 100, "records with a full visitor history")
	warm := flag.Int("warm", 10000, "records with a short visitor history")
	cold := flag.Int("cold", 100000, "records with no visits")
	batchSize := flag.Int("batch", 1000, "rows per insert batch")
	workers := flag.Int("workers", 4, "parallel insert workers")
	truncate := flag.Bool("truncate", true, "empty the urls table first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("seed supports the postgres driver only, got %q", cfg.Database.Driver)
	}
	if err := logger.Initialize(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	lg := logger.Get()

	if err := postgres.Migrate(cfg.Database.URL, lg); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	gen := &DataGenerator{pool: pool, batchSize: *batchSize, workers: *workers, now: time.Now().UTC()}

	if *truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE urls RESTART IDENTITY"); err != nil {
			log.Fatalf("Failed to clear data: %v\n", err)
		}
	}

	tiers := []tier{
		{prefix: "hot", count: *hot, visitors: domain.HistoryLimit + 200, revisits: 3, createdBy: time.Minute},
		{prefix: "warm", count: *warm, visitors: 20, revisits: 1, createdBy: time.Hour},
		{prefix: "cold", count: *cold, createdBy: time.Second},
	}

	var expected int64
	for _, t := range tiers {
		start := time.Now()
		if err := gen.insertTier(ctx, t); err != nil {
			log.Fatalf("Failed to insert %s records: %v\n", t.prefix, err)
		}
		expected += int64(t.count)
		lg.Info("Tier inserted", "tier", t.prefix, "count", t.count, "duration", time.Since(start))
	}

	if _, err := pool.Exec(ctx, "ANALYZE urls"); err != nil {
		lg.Warn("ANALYZE failed", "error", err)
	}

	if err := gen.verifyData(ctx, expected, *truncate); err != nil {
		lg.Warn("Data verification failed", "error", err)
	}
}

// insertTier splits a tier across workers, each sending pgx batches.
func (g *DataGenerator) insertTier(ctx context.Context, t tier) error {
	if t.count == 0 {
		return nil
	}

	workers := g.workers
	if workers < 1 || t.count < g.batchSize {
		workers = 1
	}

	var wg sync.WaitGroup
	errChan := make(chan error, workers)
	rowsPerWorker := t.count / workers

	for workerID := 0; workerID < workers; workerID++ {
		start := workerID*rowsPerWorker + 1
		end := start + rowsPerWorker - 1
		if workerID == workers-1 {
			end = t.count
		}

		wg.Add(1)
		go func(id, start, end int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(int64(id)*7919 + int64(start)))
			if err := g.insertRange(ctx, t, start, end, rng); err != nil {
				errChan <- fmt.Errorf("worker %d failed: %w", id, err)
			}
		}(workerID, start, end)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}

	return nil
}

func (g *DataGenerator) insertRange(ctx context.Context, t tier, start, end int, rng *rand.Rand) error {
	for i := start; i <= end; i += g.batchSize {
		batchEnd := i + g.batchSize - 1
		if batchEnd > end {
			batchEnd = end
		}

		batch := &pgx.Batch{}
		for j := i; j <= batchEnd; j++ {
			rec := buildRecord(t, j, g.now, rng)
			history, err := domain.EncodeHistory(rec.VisitorDetails)
			if err != nil {
				return err
			}
			batch.Queue(insertURL,
				rec.ShortID, rec.OriginalURL, rec.TotalClicks, rec.UniqueClicks,
				history, rec.CreatedAt, rec.UpdatedAt,
			)
		}

		br := g.pool.SendBatch(ctx, batch)
		for k := 0; k < batch.Len(); k++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch exec failed: %w", err)
			}
		}
		br.Close()
	}

	return nil
}

// buildRecord replays synthetic visits through domain.ApplyVisit so seeded
// rows obey the same counters and history bound as live traffic.
func buildRecord(t tier, n int, now time.Time, rng *rand.Rand) *domain.URLRecord {
	created := now.Add(-time.Duration(n) * t.createdBy)
	rec := &domain.URLRecord{
		ShortID:        fmt.Sprintf("%s%04d", t.prefix, n),
		OriginalURL:    fmt.Sprintf("https://example.com/%s/%d?utm_source=seed", t.prefix, n),
		VisitorDetails: []domain.VisitorDetail{},
		CreatedAt:      created,
		UpdatedAt:      created,
	}

	at := created
	for v := 0; v < t.visitors; v++ {
		loc := rng.Intn(len(cities))
		visit := domain.Visit{
			ShortID:   rec.ShortID,
			VisitorID: fmt.Sprintf("seed-%s-%d-%d", t.prefix, n, v),
			City:      cities[loc],
			Country:   countries[loc],
			UserAgent: agents[rng.Intn(len(agents))],
		}

		visits := 1 + rng.Intn(t.revisits+1)
		for r := 0; r < visits; r++ {
			at = at.Add(time.Duration(1+rng.Intn(60)) * time.Second)
			domain.ApplyVisit(rec, visit, at, domain.HistoryLimit)
		}
	}

	return rec
}

func (g *DataGenerator) verifyData(ctx context.Context, expected int64, exact bool) error {
	var count int64
	if err := g.pool.QueryRow(ctx, "SELECT COUNT(*) FROM urls").Scan(&count); err != nil {
		return err
	}

	if exact && count != expected {
		return fmt.Errorf("expected %d rows but got %d", expected, count)
	}
	if count < expected {
		return fmt.Errorf("expected at least %d rows but got %d", expected, count)
	}

	return nil
}
