// Command quarry plans and executes one full-text query against a set
// of index definitions, using the in-memory reference engine over a
// YAML document set. It prints the chosen plan description and the
// result rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"quarry/internal/config"
	"quarry/internal/fulltext"
	"quarry/internal/index"
	"quarry/internal/index/mem"
	"quarry/internal/logging"
	"quarry/internal/store"
	storemongo "quarry/internal/store/mongo"
	"quarry/pkg/model"
)

func main() {
	var (
		configPath = flag.String("config", "configs/quarry.yaml", "configuration file")
		docsPath   = flag.String("docs", "", "YAML document set to index")
		queryPath  = flag.String("path", "/", "restriction path")
		scope      = flag.String("scope", "all", "path restriction: none, exact, direct, all")
		contains   = flag.String("contains", "", "full-text search phrase")
		property   = flag.String("property", "", "equality restriction, name=value")
		order      = flag.String("order", "", "sort order, field[:desc]")
		suggest    = flag.String("suggest", "", "suggestion input instead of a search")
	)
	flag.Parse()

	// 1. Load configuration and initialize logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	// 2. Load index definitions and build the registry
	defs, err := index.LoadDefinitions(cfg.Index.Definitions)
	if err != nil {
		log.Fatalf("Failed to load index definitions: %v", err)
	}
	if *docsPath == "" {
		log.Fatal("A document set is required (-docs)")
	}
	docs, err := mem.LoadDocuments(*docsPath)
	if err != nil {
		log.Fatalf("Failed to load documents: %v", err)
	}

	tracker := index.NewTracker()
	defer tracker.Close()
	for i := range defs {
		engine := mem.New(&defs[i])
		engine.Load(docs)
		if err := tracker.Register(&defs[i], engine); err != nil {
			log.Fatalf("Failed to register index %s: %v", defs[i].Path, err)
		}
	}

	// 3. Subscribe to index lifecycle events if configured
	if cfg.Events.URL != "" {
		nc, err := nats.Connect(cfg.Events.URL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Close()
		watcher, err := index.Watch(nc, cfg.Events.Subject, tracker, nil)
		if err != nil {
			log.Fatalf("Failed to watch index lifecycle: %v", err)
		}
		defer watcher.Stop()
	}

	// 4. Set up the base column source
	var base fulltext.ColumnSource
	if cfg.Store.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoStore, err := storemongo.New(ctx, cfg.Store.MongoURI, cfg.Store.Database, cfg.Store.Collection)
		if err != nil {
			log.Fatalf("Failed to connect to store: %v", err)
		}
		defer mongoStore.Close(context.Background())
		base = mongoStore
	} else {
		mapStore := store.NewMapStore()
		for _, d := range docs {
			columns := make(map[string]any, len(d.Fields))
			for k, v := range d.Fields {
				columns[k] = v
			}
			mapStore.Put(d.Path, columns)
		}
		base = mapStore
	}

	// 5. Plan
	filter, sortOrder, err := buildFilter(*queryPath, *scope, *contains, *property, *suggest, *order)
	if err != nil {
		log.Fatalf("Invalid query: %v", err)
	}

	selector := fulltext.NewSelector(
		fulltext.TrackerRegistry{Tracker: tracker},
		index.NewLookup(tracker),
		cfg.Index.TypeTag,
		nil,
	)

	ctx := context.Background()
	plans, err := selector.GetPlans(ctx, filter, sortOrder)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}
	if len(plans) == 0 {
		log.Fatal("No index can serve this query")
	}

	plan := plans[0]
	for _, p := range plans[1:] {
		if p.Cost < plan.Cost {
			plan = p
		}
	}

	description, err := selector.Describe(plan)
	if err != nil {
		log.Fatalf("Failed to describe plan: %v", err)
	}
	fmt.Printf("plan: %s (cost %.1f of %d candidates)\n", description, plan.Cost, len(plans))

	// 6. Execute
	cursor, err := selector.Query(ctx, plan, fulltext.QueryConfig{
		Base:             base,
		Limits:           fulltext.QueryLimits{ReadLimit: cfg.Limits.ReadLimit},
		TraversalWarning: cfg.Limits.TraversalWarning,
	})
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	for cursor.Next() {
		row := cursor.Row()
		if row.IsVirtual() {
			text, _ := row.Value(index.ColumnSuggestion)
			score, _ := row.Value(index.ColumnScore)
			fmt.Printf("suggest: %v (%v)\n", text, score)
			continue
		}
		score, _ := row.Value(index.ColumnScore)
		fmt.Printf("%s  score=%v", row.Path(), score)
		if excerpt, ok := row.Value(index.ColumnExcerptPrefix); ok {
			fmt.Printf("  excerpt=%v", excerpt)
		}
		fmt.Println()
	}
	if err := cursor.Err(); err != nil {
		log.Fatalf("Cursor failed: %v", err)
	}
	fmt.Printf("estimated size: %d\n", cursor.Size())
}

// buildFilter assembles the query filter from flags.
func buildFilter(path, scope, contains, property, suggest, order string) (*model.Filter, []fulltext.OrderEntry, error) {
	restriction, ok := map[string]model.PathRestriction{
		"none":   model.RestrictionNone,
		"exact":  model.RestrictionExact,
		"direct": model.RestrictionDirectChildren,
		"all":    model.RestrictionAllChildren,
	}[scope]
	if !ok {
		return nil, nil, fmt.Errorf("unknown scope %q", scope)
	}

	filter := &model.Filter{Path: path, PathRestriction: restriction}

	if contains != "" {
		filter.FullText = &model.FullTextTerm{Text: contains}
	}
	if property != "" {
		name, value, found := strings.Cut(property, "=")
		if !found {
			return nil, nil, fmt.Errorf("property must be name=value")
		}
		filter.PropertyRestrictions = append(filter.PropertyRestrictions, model.PropertyRestriction{
			Property:       name,
			First:          value,
			FirstIncluding: true,
			Last:           value,
			LastIncluding:  true,
		})
	}
	if suggest != "" {
		filter.PropertyRestrictions = append(filter.PropertyRestrictions, model.PropertyRestriction{
			Property:       index.ColumnSuggestion,
			First:          suggest,
			FirstIncluding: true,
			Last:           suggest,
			LastIncluding:  true,
		})
	}

	var sortOrder []fulltext.OrderEntry
	if order != "" {
		field, dir, _ := strings.Cut(order, ":")
		sortOrder = append(sortOrder, fulltext.OrderEntry{
			Property:   field,
			Descending: dir == "desc",
		})
	}

	if contains == "" && suggest == "" && property == "" {
		return nil, nil, fmt.Errorf("nothing to search for")
	}
	return filter, sortOrder, nil
}
