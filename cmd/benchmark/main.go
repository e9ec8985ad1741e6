package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cmdref/config"
	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/adapter/retriever"
	"cmdref/internal/adapter/snapshot"
	"cmdref/internal/adapter/store"
	"cmdref/internal/adapter/worker"
	"cmdref/internal/domain"
	"cmdref/internal/logging"
	"cmdref/internal/usecase"
)

// judgedQuery is one benchmark query with the ids a good ranking returns.
type judgedQuery struct {
	Query    string   `json:"query"`
	Relevant []string `json:"relevant"`
}

func main() {
	indexPath := flag.String("index", "", "Directory holding .cmdref/snapshot.db")
	snapPath := flag.String("snapshot", "", "Snapshot JSON file to load instead of the store")
	synth := flag.Int("synth", 2000, "Synthesize a snapshot with this many commands when no source is given")
	queriesPath := flag.String("queries", "", "JSON file of judged queries [{query, relevant}]")
	iterations := flag.Int("n", 20, "Times each query is replayed")
	concurrency := flag.Int("c", 8, "Concurrent readers")
	topK := flag.Int("k", 10, "Cutoff for quality metrics")
	async := flag.Bool("async", false, "Run queries through the worker pool host")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *indexPath != "" {
		var err error
		if cfg, err = config.LoadFromDir(*indexPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	snap, source, err := loadSnapshot(*indexPath, *snapPath, *synth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}

	engine := usecase.NewEngine(cfg.Search, logging.Discard())
	start := time.Now()
	if err := engine.Initialize(snap); err != nil {
		fmt.Fprintf(os.Stderr, "Snapshot rejected: %v\n", err)
		os.Exit(1)
	}
	loadTime := time.Since(start)

	queries, err := loadQueries(*queriesPath, snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading queries: %v\n", err)
		os.Exit(1)
	}

	search := func(ctx context.Context, opts domain.SearchOptions) ([]domain.SearchResult, error) {
		return engine.Search(opts), nil
	}
	if *async {
		host, err := worker.NewHost(engine, worker.WithPoolSize(*concurrency))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Worker host failed: %v\n", err)
			os.Exit(1)
		}
		defer host.Release()
		search = host.Search
	}

	fmt.Println("COMMAND SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	stats, _ := engine.Stats()
	fmt.Printf("Source:     %s\n", source)
	fmt.Printf("Commands:   %d\n", stats.Commands)
	fmt.Printf("Tokens:     %d\n", stats.Tokens)
	fmt.Printf("Load time:  %s\n", loadTime)
	fmt.Printf("Queries:    %d x %d, %d readers, async=%v\n", len(queries), *iterations, *concurrency, *async)
	fmt.Println()

	latencies, err := replay(search, queries, *iterations, *concurrency, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
		os.Exit(1)
	}
	printLatencies(latencies)
	printQuality(engine, queries, *topK)
}

func loadSnapshot(indexPath, snapPath string, synth int) (*domain.IndexSnapshot, string, error) {
	switch {
	case snapPath != "":
		snap, _, err := snapshot.DecodeFile(snapPath)
		return snap, snapPath, err
	case indexPath != "":
		st, err := store.NewBoltStore(config.StoreDBPath(indexPath))
		if err != nil {
			return nil, "", err
		}
		defer st.Close()
		snap, err := st.LoadSnapshot()
		return snap, config.StoreDBPath(indexPath), err
	default:
		return synthesize(synth), fmt.Sprintf("synthetic (%d commands)", synth), nil
	}
}

var (
	synthVerbs    = []string{"list", "copy", "move", "remove", "search", "compress", "extract", "mount", "print", "change", "show", "sync"}
	synthObjects  = []string{"files", "directories", "archives", "processes", "devices", "users", "packages", "networks", "partitions", "permissions"}
	synthCats     = []string{"file-management", "text-processing", "system", "networking", "archiving", "development"}
	synthLevels   = []domain.Complexity{domain.ComplexityBasic, domain.ComplexityIntermediate, domain.ComplexityAdvanced}
	synthSyllable = []string{"ar", "be", "ci", "do", "ek", "fu", "gr", "ls", "mk", "ps", "ta", "xz"}
)

// synthesize builds a deterministic snapshot of n commands with an inverted
// index covering names, titles and keywords.
func synthesize(n int) *domain.IndexSnapshot {
	rng := rand.New(rand.NewSource(42))
	tok := analyzer.NewTokenizer(false)
	snap := &domain.IndexSnapshot{
		Commands:        make(map[string]domain.CommandRecord, n),
		InvertedIndex:   make(map[string][]string),
		CategoryIndex:   make(map[string][]string),
		ComplexityIndex: make(map[string][]string),
	}

	for i := 0; i < n; i++ {
		name := synthSyllable[rng.Intn(len(synthSyllable))] + synthSyllable[rng.Intn(len(synthSyllable))]
		if i >= len(synthSyllable)*len(synthSyllable) {
			name = fmt.Sprintf("%s%d", name, i)
		}
		section := 1 + rng.Intn(8)
		id := domain.CommandID(name, section)
		if _, dup := snap.Commands[id]; dup {
			continue
		}

		verb := synthVerbs[rng.Intn(len(synthVerbs))]
		object := synthObjects[rng.Intn(len(synthObjects))]
		cat := synthCats[rng.Intn(len(synthCats))]
		level := synthLevels[rng.Intn(len(synthLevels))]
		rec := domain.CommandRecord{
			ID:          id,
			Name:        name,
			Section:     section,
			Title:       fmt.Sprintf("%s %s", verb, object),
			Description: fmt.Sprintf("%s selected %s in the current session", verb, object),
			Category:    cat,
			Complexity:  level,
			IsCommon:    rng.Intn(10) == 0,
			Keywords:    []string{verb, object},
		}
		snap.Commands[id] = rec
		snap.CategoryIndex[cat] = append(snap.CategoryIndex[cat], id)
		snap.ComplexityIndex[string(level)] = append(snap.ComplexityIndex[string(level)], id)

		seen := make(map[string]struct{})
		for _, w := range tok.Words(strings.Join([]string{rec.Name, rec.Title, rec.Description}, " ")) {
			if _, ok := seen[w]; ok || len(w) < 2 {
				continue
			}
			seen[w] = struct{}{}
			snap.InvertedIndex[w] = append(snap.InvertedIndex[w], id)
		}
	}
	return snap
}

// loadQueries reads judged queries from path, or derives them from the
// snapshot: each sampled record is relevant for its own name, a typo of it,
// and its title.
func loadQueries(path string, snap *domain.IndexSnapshot) ([]judgedQuery, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var queries []judgedQuery
		if err := json.Unmarshal(data, &queries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return queries, nil
	}

	ids := make([]string, 0, len(snap.Commands))
	for id := range snap.Commands {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var queries []judgedQuery
	for i := 0; i < len(ids) && len(queries) < 60; i += max(1, len(ids)/20) {
		rec := snap.Commands[ids[i]]
		queries = append(queries,
			judgedQuery{Query: rec.Name, Relevant: []string{rec.ID}},
			judgedQuery{Query: rec.Title, Relevant: []string{rec.ID}},
		)
		if len(rec.Name) > 3 {
			typo := rec.Name[:len(rec.Name)-1] + "q"
			queries = append(queries, judgedQuery{Query: typo, Relevant: []string{rec.ID}})
		}
	}
	return queries, nil
}

type searchFunc func(ctx context.Context, opts domain.SearchOptions) ([]domain.SearchResult, error)

func replay(search searchFunc, queries []judgedQuery, iterations, concurrency, k int) ([]time.Duration, error) {
	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, len(queries)*iterations)
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(1, concurrency))
	for it := 0; it < iterations; it++ {
		for _, q := range queries {
			opts := domain.SearchOptions{Query: q.Query, Limit: domain.Int(k)}
			g.Go(func() error {
				start := time.Now()
				if _, err := search(ctx, opts); err != nil {
					return err
				}
				d := time.Since(start)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	return latencies, nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := int(p * float64(len(sorted)-1))
	return sorted[i]
}

func printLatencies(latencies []time.Duration) {
	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	fmt.Println("LATENCY:")
	if len(latencies) == 0 {
		fmt.Println("  no queries")
		return
	}
	fmt.Printf("  Searches: %d\n", len(latencies))
	fmt.Printf("  Mean:     %s\n", total/time.Duration(len(latencies)))
	fmt.Printf("  p50:      %s\n", percentile(latencies, 0.50))
	fmt.Printf("  p90:      %s\n", percentile(latencies, 0.90))
	fmt.Printf("  p99:      %s\n", percentile(latencies, 0.99))
	fmt.Printf("  Max:      %s\n", latencies[len(latencies)-1])
	fmt.Println()
}

func printQuality(engine *usecase.Engine, queries []judgedQuery, k int) {
	var precision, recall, mrr, ndcg float64
	for _, q := range queries {
		results := engine.Search(domain.SearchOptions{Query: q.Query, Limit: domain.Int(k)})
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}

		grades := make(map[string]float64, len(q.Relevant))
		for _, id := range q.Relevant {
			grades[id] = 1
		}
		precision += retriever.PrecisionAtK(ids, q.Relevant, k)
		recall += retriever.RecallAtK(ids, q.Relevant, k)
		mrr += retriever.ReciprocalRank(ids, q.Relevant...)
		ndcg += retriever.GradedNDCG(ids, grades, k)
	}

	n := float64(max(1, len(queries)))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS (k=%d):\n", k)
	fmt.Printf("  Precision@k: %.3f\n", precision/n)
	fmt.Printf("  Recall@k:    %.3f\n", recall/n)
	fmt.Printf("  MRR:         %.3f\n", mrr/n)
	fmt.Printf("  NDCG@k:      %.3f\n", ndcg/n)

	if avg := mrr / n; avg > 0.8 {
		fmt.Println("  Status: GOOD - judged commands rank near the top")
	} else if avg > 0 {
		fmt.Println("  Status: OK - judged commands retrieved but ranked low")
	} else {
		fmt.Println("  Status: POOR - judged commands never retrieved")
	}
}
