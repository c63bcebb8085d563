package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jmercer/deckforge/internal/charts"
	"github.com/jmercer/deckforge/internal/config"
	"github.com/jmercer/deckforge/internal/deck"
	"github.com/jmercer/deckforge/internal/edhrec"
	"github.com/jmercer/deckforge/internal/export"
	"github.com/jmercer/deckforge/internal/inventory"
	"github.com/jmercer/deckforge/internal/storage"
	"github.com/jmercer/deckforge/internal/storage/models"
	"github.com/jmercer/deckforge/internal/storage/repository"
	"github.com/jmercer/deckforge/internal/watcher"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuildCommand(os.Args[2:])
	case "average":
		runAverageCommand(os.Args[2:])
	case "history":
		runHistoryCommand(os.Args[2:])
	case "chart":
		runChartCommand(os.Args[2:])
	case "watch":
		runWatchCommand(os.Args[2:])
	case "backup":
		runBackupCommand(os.Args[2:])
	case "migrate":
		runMigrateCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("deckforge - Commander deck builder")
	fmt.Println()
	fmt.Println("Usage: deckforge <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  build      - Build a deck from your inventory and EDHREC data")
	fmt.Println("  average    - Reconstruct the EDHREC average deck from owned cards")
	fmt.Println("  history    - List, show, or delete saved builds")
	fmt.Println("  chart      - Render type and price charts for a build")
	fmt.Println("  watch      - Rebuild automatically when the inventory file changes")
	fmt.Println("  backup     - Create, list, or restore database backups")
	fmt.Println("  migrate    - Run database migrations")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  deckforge build -inventory cards.csv -edhrec atraxa.json -commander \"Atraxa, Praetors' Voice\" -budget 150")
	fmt.Println("  deckforge history list")
	fmt.Println("  deckforge backup create -passphrase secret")
	fmt.Println()
}

// loadConfig loads the user config, falling back to defaults.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: failed to load config, using defaults: %v", err)
		return config.DefaultConfig()
	}
	return cfg
}

func databasePath(cfg *config.Config) string {
	if cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	path, err := config.DefaultDatabasePath()
	if err != nil {
		log.Fatalf("Error resolving database path: %v", err)
	}
	return path
}

// loadInventory parses the inventory CSV at path.
func loadInventory(path string, strict bool) *inventory.ParseResult {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Error opening inventory file: %v", err)
	}
	defer func() { _ = f.Close() }()

	parser := inventory.NewParser(inventory.ParserOptions{Strict: strict})
	result, err := parser.Parse(f)
	if err != nil {
		log.Fatalf("Error parsing inventory: %v", err)
	}
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
	}
	return result
}

// loadProvider parses the EDHREC payload JSON at path.
func loadProvider(path string) *edhrec.Adapter {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading EDHREC payload: %v", err)
	}
	payload, err := edhrec.ParsePayload(data)
	if err != nil {
		log.Fatalf("Error parsing EDHREC payload: %v", err)
	}
	return edhrec.NewAdapter(payload)
}

func newBuilder(cfg *config.Config) *deck.Builder {
	policy := deck.DefaultPolicy()
	if cfg.Builder.DefaultScore > 0 {
		policy.DefaultScore = cfg.Builder.DefaultScore
	}
	if cfg.Builder.ThemeBoost > 0 {
		policy.ThemeBoost = cfg.Builder.ThemeBoost
	}
	policy.TypeQuotas = cfg.Builder.TypeQuotas
	return deck.NewBuilder(policy)
}

func runBuildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	inventoryPath := fs.String("inventory", "", "Path to inventory CSV file (required)")
	payloadPath := fs.String("edhrec", "", "Path to EDHREC payload JSON file (required)")
	commander := fs.String("commander", "", "Commander card name (required)")
	partner := fs.String("partner", "", "Partner commander card name")
	theme := fs.String("theme", "", "Theme tag to boost (e.g. counters)")
	budget := fs.Float64("budget", 0, "Total price ceiling in USD (0 = unlimited)")
	full := fs.Bool("full", false, "Fail instead of returning a budget-capped partial deck")
	save := fs.Bool("save", false, "Save the build to history")
	format := fs.String("format", "plaintext", "Export format: plaintext, moxfield, csv")
	outPath := fs.String("out", "", "Write the deck list to this file instead of stdout")
	_ = fs.Parse(args)

	if *inventoryPath == "" || *payloadPath == "" || *commander == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	inv := loadInventory(*inventoryPath, cfg.Inventory.Strict)
	provider := loadProvider(*payloadPath)

	builder := newBuilder(cfg)
	result, err := builder.Build(&deck.BuildRequest{
		Commander:       *commander,
		Partner:         *partner,
		Theme:           *theme,
		Budget:          *budget,
		RequireFullDeck: *full || cfg.Builder.RequireFullDeck,
		Inventory:       inv.Cards,
		Provider:        provider,
	})
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
	}
	fmt.Printf("Built %d-card deck for %s (%s), total $%.2f\n",
		result.Size()+1, result.Commander, strings.Join(result.Identity, ""), result.TotalPrice)

	exported, err := export.NewExporter().Export(result, &export.Options{
		Format:       export.Format(*format),
		IncludeStats: true,
	})
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(exported.Content), 0o644); err != nil {
			log.Fatalf("Error writing deck list: %v", err)
		}
		fmt.Printf("Deck list written to %s\n", *outPath)
	} else {
		fmt.Println()
		fmt.Print(exported.Content)
	}

	if *save {
		id := saveBuild(cfg, result, *budget)
		fmt.Printf("Saved as build #%d\n", id)
	}
}

// saveBuild persists a finished build and returns its ID.
func saveBuild(cfg *config.Config, result *deck.DeckResult, budget float64) int64 {
	db := openDatabase(cfg)
	defer func() { _ = db.Close() }()

	build := &models.Build{
		Commander:  result.Commander,
		Partner:    result.Partner,
		Theme:      result.Theme,
		Budget:     budget,
		TotalPrice: result.TotalPrice,
		DeckSize:   result.Size(),
	}
	cards := make([]*models.BuildCard, len(result.Cards))
	for i, c := range result.Cards {
		cards[i] = &models.BuildCard{
			CardName:    c.Name,
			PrimaryType: c.PrimaryType,
			Quantity:    c.Quantity,
			Price:       c.Price,
			Score:       c.Score,
		}
	}

	repo := repository.NewBuildRepository(db.Conn())
	id, err := repo.Save(context.Background(), build, cards, nil)
	if err != nil {
		log.Fatalf("Error saving build: %v", err)
	}
	return id
}

func openDatabase(cfg *config.Config) *storage.DB {
	dbPath := databasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}
	dbCfg := storage.DefaultConfig(dbPath)
	dbCfg.AutoMigrate = true
	db, err := storage.Open(dbCfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return db
}

func runAverageCommand(args []string) {
	fs := flag.NewFlagSet("average", flag.ExitOnError)
	inventoryPath := fs.String("inventory", "", "Path to inventory CSV file (required)")
	payloadPath := fs.String("edhrec", "", "Path to EDHREC payload JSON file (required)")
	commander := fs.String("commander", "", "Commander card name (required)")
	partner := fs.String("partner", "", "Partner commander card name")
	_ = fs.Parse(args)

	if *inventoryPath == "" || *payloadPath == "" || *commander == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	inv := loadInventory(*inventoryPath, cfg.Inventory.Strict)
	provider := loadProvider(*payloadPath)

	result, err := newBuilder(cfg).BuildFromAverage(&deck.BuildRequest{
		Commander: *commander,
		Partner:   *partner,
		Inventory: inv.Cards,
		Provider:  provider,
	})
	if err != nil {
		log.Fatalf("Average deck build failed: %v", err)
	}

	fmt.Printf("Average deck for %s: %d cards\n\n", result.Commander, result.DeckSize)
	names := make([]string, 0, len(result.Deck))
	for name := range result.Deck {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%d %s\n", result.Deck[name], name)
	}

	if len(result.Substitutions) > 0 {
		fmt.Println("\nSubstitutions:")
		for _, s := range result.Substitutions {
			fmt.Printf("  %s -> %s\n", s.For, s.With)
		}
	}
	if len(result.Unavailable) > 0 {
		fmt.Println("\nUnavailable (no owned replacement):")
		for _, name := range result.Unavailable {
			fmt.Printf("  %s\n", name)
		}
	}
}

func runHistoryCommand(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: deckforge history <list|show|delete> [options]")
		os.Exit(1)
	}

	cfg := loadConfig()
	db := openDatabase(cfg)
	defer func() { _ = db.Close() }()
	repo := repository.NewBuildRepository(db.Conn())
	ctx := context.Background()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("history list", flag.ExitOnError)
		commander := fs.String("commander", "", "Only show builds for this commander")
		limit := fs.Int("limit", 20, "Maximum number of builds to show")
		_ = fs.Parse(args[1:])

		builds, err := repo.List(ctx, *commander, *limit)
		if err != nil {
			log.Fatalf("Error listing builds: %v", err)
		}
		if len(builds) == 0 {
			fmt.Println("No saved builds.")
			return
		}
		for _, b := range builds {
			fmt.Printf("#%d  %s  %d cards  $%.2f  %s\n",
				b.ID, b.Commander, b.DeckSize, b.TotalPrice, b.CreatedAt.Format("2006-01-02 15:04"))
		}

	case "show":
		id := parseBuildID(args[1:])
		build, cards, err := repo.Get(ctx, id)
		if err != nil {
			log.Fatalf("Error loading build: %v", err)
		}
		fmt.Printf("Build #%d: %s", build.ID, build.Commander)
		if build.Partner != "" {
			fmt.Printf(" / %s", build.Partner)
		}
		fmt.Printf("  (%d cards, $%.2f)\n\n", build.DeckSize, build.TotalPrice)
		for _, c := range cards {
			fmt.Printf("%d %s\n", c.Quantity, c.CardName)
		}
		unavailable, err := repo.GetUnavailable(ctx, id)
		if err != nil {
			log.Fatalf("Error loading unavailable cards: %v", err)
		}
		if len(unavailable) > 0 {
			fmt.Println("\nUnavailable:")
			for _, name := range unavailable {
				fmt.Printf("  %s\n", name)
			}
		}

	case "delete":
		id := parseBuildID(args[1:])
		if err := repo.Delete(ctx, id); err != nil {
			log.Fatalf("Error deleting build: %v", err)
		}
		fmt.Printf("Deleted build #%d\n", id)

	default:
		fmt.Printf("Unknown history command: %s\n", args[0])
		os.Exit(1)
	}
}

func parseBuildID(args []string) int64 {
	if len(args) < 1 {
		fmt.Println("Error: build ID required")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		log.Fatalf("Invalid build ID %q: %v", args[0], err)
	}
	return id
}

func runChartCommand(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	buildID := fs.Int64("build", 0, "Saved build ID to chart (required)")
	outDir := fs.String("out", ".", "Directory for the chart HTML files")
	open := fs.Bool("open", false, "Open the charts in the default browser")
	_ = fs.Parse(args)

	if *buildID == 0 {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	db := openDatabase(cfg)
	defer func() { _ = db.Close() }()
	repo := repository.NewBuildRepository(db.Conn())

	build, cards, err := repo.Get(context.Background(), *buildID)
	if err != nil {
		log.Fatalf("Error loading build: %v", err)
	}

	result := &deck.DeckResult{
		Commander:  build.Commander,
		Partner:    build.Partner,
		TotalPrice: build.TotalPrice,
	}
	for _, c := range cards {
		result.Cards = append(result.Cards, deck.DeckCard{
			Name:        c.CardName,
			PrimaryType: c.PrimaryType,
			Quantity:    c.Quantity,
			Price:       c.Price,
			Score:       c.Score,
		})
	}

	typesPath := filepath.Join(*outDir, fmt.Sprintf("build_%d_types.html", *buildID))
	pricesPath := filepath.Join(*outDir, fmt.Sprintf("build_%d_prices.html", *buildID))

	if err := charts.RenderTypePie(result, charts.DefaultConfig(), typesPath); err != nil {
		log.Fatalf("Error rendering type chart: %v", err)
	}
	if err := charts.RenderPriceBar(result, charts.DefaultConfig(), pricesPath); err != nil {
		log.Fatalf("Error rendering price chart: %v", err)
	}
	fmt.Printf("Charts written to %s and %s\n", typesPath, pricesPath)

	if *open {
		if err := charts.OpenInBrowser(typesPath); err != nil {
			log.Printf("Warning: failed to open browser: %v", err)
		}
	}
}

func runWatchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	inventoryPath := fs.String("inventory", "", "Path to inventory CSV file (required)")
	payloadPath := fs.String("edhrec", "", "Path to EDHREC payload JSON file (required)")
	commander := fs.String("commander", "", "Commander card name (required)")
	partner := fs.String("partner", "", "Partner commander card name")
	theme := fs.String("theme", "", "Theme tag to boost")
	budget := fs.Float64("budget", 0, "Total price ceiling in USD")
	outPath := fs.String("out", "deck.txt", "Deck list output file, rewritten on each rebuild")
	_ = fs.Parse(args)

	if *inventoryPath == "" || *payloadPath == "" || *commander == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	provider := loadProvider(*payloadPath)
	builder := newBuilder(cfg)

	rebuild := func(ctx context.Context) error {
		f, err := os.Open(*inventoryPath)
		if err != nil {
			return fmt.Errorf("failed to open inventory: %w", err)
		}
		defer func() { _ = f.Close() }()

		parsed, err := inventory.NewParser(inventory.ParserOptions{Strict: cfg.Inventory.Strict}).Parse(f)
		if err != nil {
			return fmt.Errorf("failed to parse inventory: %w", err)
		}

		result, err := builder.Build(&deck.BuildRequest{
			Commander: *commander,
			Partner:   *partner,
			Theme:     *theme,
			Budget:    *budget,
			Inventory: parsed.Cards,
			Provider:  provider,
		})
		if err != nil {
			return err
		}

		exported, err := export.NewExporter().Export(result, &export.Options{Format: export.FormatPlainText})
		if err != nil {
			return err
		}
		if err := os.WriteFile(*outPath, []byte(exported.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write deck list: %w", err)
		}
		log.Printf("Rebuilt %d-card deck, total $%.2f -> %s", result.Size()+1, result.TotalPrice, *outPath)
		return nil
	}

	minInterval, err := cfg.GetWatchMinInterval()
	if err != nil {
		log.Fatalf("Invalid watch.min_interval: %v", err)
	}
	w, err := watcher.New(*inventoryPath, rebuild, &watcher.Options{MinInterval: minInterval})
	if err != nil {
		log.Fatalf("Error creating watcher: %v", err)
	}

	// Build once up front so the output exists before the first change.
	if err := rebuild(context.Background()); err != nil {
		log.Printf("Warning: initial build failed: %v", err)
	}

	if err := w.Watch(context.Background()); err != nil && err != context.Canceled {
		log.Fatalf("Watcher stopped: %v", err)
	}
}

func runBackupCommand(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: deckforge backup <create|list|restore> [options]")
		os.Exit(1)
	}

	cfg := loadConfig()
	bm := storage.NewBackupManager(databasePath(cfg))

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("backup create", flag.ExitOnError)
		name := fs.String("name", "", "Backup file name (timestamped if empty)")
		passphrase := fs.String("passphrase", "", "Encrypt the backup with this passphrase")
		_ = fs.Parse(args[1:])

		opts := storage.DefaultBackupOptions()
		opts.Name = *name
		opts.Passphrase = *passphrase
		path, err := bm.Backup(opts)
		if err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		fmt.Printf("Backup created: %s\n", path)

	case "list":
		backups, err := bm.List("")
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return
		}
		for _, b := range backups {
			marker := ""
			if b.Encrypted {
				marker = "  [encrypted]"
			}
			fmt.Printf("%s  %d bytes  %s%s\n", b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04"), marker)
		}

	case "restore":
		fs := flag.NewFlagSet("backup restore", flag.ExitOnError)
		passphrase := fs.String("passphrase", "", "Passphrase for encrypted backups")
		_ = fs.Parse(args[1:])
		rest := fs.Args()
		if len(rest) < 1 {
			fmt.Println("Usage: deckforge backup restore [-passphrase pw] <backup-file>")
			os.Exit(1)
		}
		if err := bm.Restore(rest[0], *passphrase); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Println("Database restored.")

	default:
		fmt.Printf("Unknown backup command: %s\n", args[0])
		os.Exit(1)
	}
}

func runMigrateCommand(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: deckforge migrate <up|down|status>")
		os.Exit(1)
	}

	cfg := loadConfig()
	dbPath := databasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationVersion(mgr)
		fmt.Println("All migrations applied.")
	case "down":
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printMigrationVersion(mgr)
	case "status", "version":
		printMigrationVersion(mgr)
	default:
		fmt.Printf("Unknown migrate command: %s\n", args[0])
		os.Exit(1)
	}
}

func printMigrationVersion(mgr *storage.MigrationManager) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting migration version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
}
