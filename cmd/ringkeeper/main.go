package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ringkeeper/internal/logging"
	"ringkeeper/internal/store/artifact"
	"ringkeeper/internal/store/cache"
	"ringkeeper/internal/store/vector"
	"ringkeeper/pkg/config"
	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/rebalance"
	"ringkeeper/pkg/ring"
)

var (
	configPath = flag.String("config", "configs/ringkeeper.yaml", "Path to configuration file")
	nodeID     = flag.String("node-id", "", "Unique node identifier")
	seedKeys   = flag.Int("seed-keys", 500, "Number of demo cache keys to seed before rebalancing")
)

// main runs a scripted demo: it attaches three cache nodes to a ring, seeds
// them with keys, takes a snapshot, attaches a fourth node, plans the
// resulting migration, and executes it — the same attach/seed/clone/plan/
// execute sequence exercised by the cache rebalance tests, wired end to end
// with the process's own config and logging.
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *nodeID != "" {
		cfg.Node.ID = *nodeID
	}

	logger, err := logging.InitializeFromConfig(cfg.Node.ID, logging.LogConfig{
		Level:         cfg.Logging.Level,
		EnableConsole: cfg.Logging.EnableConsole,
		EnableFile:    cfg.Logging.EnableFile,
		LogFile:       cfg.Logging.LogFile,
		BufferSize:    cfg.Logging.BufferSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	startupCorrelationID := logging.NewCorrelationID()
	ctx := logging.WithCorrelationID(context.Background(), startupCorrelationID)

	logging.Info(ctx, logging.ComponentMain, logging.ActionStart, "ringkeeper node starting", map[string]interface{}{
		"node_id":     cfg.Node.ID,
		"config_file": *configPath,
	})

	shutdownCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := ring.New(ring.Config{
		VirtualNodesPerWeight: cfg.Ring.VirtualNodesPerWeight,
		Seed:                  cfg.Ring.Seed,
	})
	router := placement.NewRouter[[]byte](r, cfg.Cache.Replication, cfg.Cache.Multiprobe)

	for _, id := range []string{"cache-a", "cache-b", "cache-c"} {
		node := cache.NewNode(id, cfg.Cache.MaxMemoryBytes)
		if err := router.Attach(id, node, 1); err != nil {
			logging.Fatal(shutdownCtx, logging.ComponentMain, logging.ActionAddNode, "failed to attach cache node", err, map[string]interface{}{"node": id})
			os.Exit(1)
		}
	}
	logging.Info(shutdownCtx, logging.ComponentRing, logging.ActionAddNode, "cache ring seeded with nodes", map[string]interface{}{
		"nodes": router.AdapterIDs(),
	})

	dc := cache.NewDistributedCache(router)

	keys := demoKeys(*seedKeys)
	for _, k := range keys {
		value := []byte(fmt.Sprintf("value-for-%s", k))
		if err := dc.Set(shutdownCtx, k, value, cfg.Cache.DefaultTTL); err != nil {
			logging.Error(shutdownCtx, logging.ComponentCacheStore, "seed", "failed to seed demo key", err, map[string]interface{}{"key": k})
		}
	}
	logging.Info(shutdownCtx, logging.ComponentCacheStore, "seed", "demo keys seeded", map[string]interface{}{"count": len(keys)})

	before := r.Clone()

	newNodeID := "cache-d"
	newNode := cache.NewNode(newNodeID, cfg.Cache.MaxMemoryBytes)
	if err := router.Attach(newNodeID, newNode, 1); err != nil {
		logging.Fatal(shutdownCtx, logging.ComponentMain, logging.ActionAddNode, "failed to attach new cache node", err, map[string]interface{}{"node": newNodeID})
		os.Exit(1)
	}

	plan := rebalance.PlanMoved(keys, before, r)
	stats := rebalance.PlanStats(plan)
	logging.Info(shutdownCtx, logging.ComponentRebalance, logging.ActionPlan, "rebalance plan computed", map[string]interface{}{
		"moved_count": stats.MovedCount,
		"by_to":       stats.ByTo,
		"new_node":    newNodeID,
	})

	exec := cache.NewRebalancer(router, cfg.Cache.DefaultTTL)
	if err := exec.Execute(shutdownCtx, plan, before); err != nil {
		logging.Fatal(shutdownCtx, logging.ComponentRebalance, logging.ActionExecute, "rebalance execution failed", err)
		os.Exit(1)
	}
	logging.Info(shutdownCtx, logging.ComponentRebalance, logging.ActionExecute, "rebalance execution complete", map[string]interface{}{"moved_count": stats.MovedCount})

	verifyDemoKeys(shutdownCtx, dc, keys)

	runVectorDemo(shutdownCtx, cfg)
	runArtifactDemo(shutdownCtx, cfg)

	fmt.Printf("ringkeeper demo complete: %d keys, %d moved onto %s\n", len(keys), stats.MovedCount, newNodeID)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logging.Info(shutdownCtx, logging.ComponentMain, logging.ActionStop, "ringkeeper node shutting down", nil)
}

func demoKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("demo:key:%d", i)
	}
	return keys
}

func verifyDemoKeys(ctx context.Context, dc *cache.DistributedCache, keys []string) {
	missing := 0
	for _, k := range keys {
		if _, ok, _ := dc.Get(ctx, k); !ok {
			missing++
		}
	}
	logging.Info(ctx, logging.ComponentCacheStore, "verify", "post-rebalance readability check", map[string]interface{}{
		"checked": len(keys),
		"missing": missing,
	})
}

// runVectorDemo attaches two shards, upserts a handful of embeddings, and
// runs a similarity search, exercising the vector store outside any
// rebalance path.
func runVectorDemo(ctx context.Context, cfg *config.Config) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: cfg.Ring.VirtualNodesPerWeight, Seed: cfg.Ring.Seed + 1})
	router := placement.NewRouter[[]float32](r, cfg.Vector.Replication, cfg.Vector.Multiprobe)

	for _, id := range []string{"vector-a", "vector-b"} {
		shard := vector.NewShard(id)
		if err := router.Attach(id, shard, 1); err != nil {
			logging.Error(ctx, logging.ComponentVectorStore, logging.ActionAddNode, "failed to attach vector shard", err)
			return
		}
	}

	rnd := rand.New(rand.NewSource(int64(cfg.Ring.Seed)))
	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("embedding:%d", i)
		vec := randomVector(rnd, cfg.Vector.Dimension)
		for _, adapter := range router.Placement(key) {
			adapter.Put(ctx, key, vec, nil)
		}
	}

	query := randomVector(rnd, cfg.Vector.Dimension)
	topMatches := 0
	for _, adapter := range router.Placement("embedding:0") {
		if shard, ok := adapter.(*vector.Shard); ok {
			topMatches += len(shard.Search(ctx, query, 3))
		}
	}
	logging.Info(ctx, logging.ComponentVectorStore, "search", "vector demo search complete", map[string]interface{}{
		"shards":       router.AdapterIDs(),
		"top_matches":  topMatches,
	})
}

func randomVector(rnd *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rnd.Float32()
	}
	return v
}

// runArtifactDemo attaches artifact hosts under a temp root and distributes
// a blob to every replica.
func runArtifactDemo(ctx context.Context, cfg *config.Config) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: cfg.Ring.VirtualNodesPerWeight, Seed: cfg.Ring.Seed + 2})
	router := placement.NewRouter[[]byte](r, cfg.Artifact.Replication, cfg.Artifact.Multiprobe)

	for _, id := range []string{"artifact-a", "artifact-b"} {
		root := filepath.Join(cfg.Artifact.RootDir, id)
		if err := os.MkdirAll(root, 0o755); err != nil {
			logging.Error(ctx, logging.ComponentArtifact, logging.ActionAddNode, "failed to create artifact root", err, map[string]interface{}{"root": root})
			return
		}
		host := artifact.NewHost(id, root)
		if err := router.Attach(id, host, 1); err != nil {
			logging.Error(ctx, logging.ComponentArtifact, logging.ActionAddNode, "failed to attach artifact host", err)
			return
		}
	}

	dist := artifact.NewDistributor(router)
	if err := dist.Distribute(ctx, "model:lora:en:v1", []byte("demo artifact payload")); err != nil {
		logging.Error(ctx, logging.ComponentArtifact, "distribute", "artifact distribution failed", err)
		return
	}
	logging.Info(ctx, logging.ComponentArtifact, "distribute", "artifact demo distribution complete", map[string]interface{}{
		"hosts": router.AdapterIDs(),
	})
}
