package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/config"
	"datarepublican/charitygraph/internal/dataset"
	"datarepublican/charitygraph/internal/db"
	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/logging"
)

var (
	configPath  string
	dbPath      string
	datasetPath string
	logLevel    string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "charitygraph",
	Short:         "Lay out and render charity money-flow graphs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if datasetPath != "" {
			c.Dataset.Path = datasetPath
		}
		if dbPath != "" {
			c.Dataset.DB = dbPath
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		l, err := logging.New(c.Log)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .charitygraph.db database")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Path to a JSON or YAML dataset file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// DiscoverDB finds the database path using priority: env > flag/config > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("CHARITYGRAPH_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag or config file
	if cfg != nil && cfg.Dataset.DB != "" {
		if _, err := os.Stat(cfg.Dataset.DB); err == nil {
			return cfg.Dataset.DB, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", cfg.Dataset.DB)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".charitygraph.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "charitygraph", "charitygraph.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .charitygraph.db found (set CHARITYGRAPH_DB, use --db, --dataset, or run from a directory containing .charitygraph.db)")
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// source is where the records of one command came from. DB is nil for
// dataset files.
type source struct {
	Nodes []graph.Node
	Edges []graph.Edge
	DB    *db.DB
	Name  string
}

func (s *source) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// loadSource reads the configured dataset file, or the database when no
// file is set.
func loadSource() (*source, error) {
	if cfg.Dataset.Path != "" {
		ds, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return nil, err
		}
		return &source{Nodes: ds.Nodes, Edges: ds.Links, Name: cfg.Dataset.Path}, nil
	}

	d, err := OpenDatabase()
	if err != nil {
		return nil, err
	}
	nodes, edges, err := graph.LoadFromDB(d)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	return &source{Nodes: nodes, Edges: edges, DB: d, Name: "database"}, nil
}

// ResolveNode finds a charity by full ID, EIN prefix, or name search.
func ResolveNode(snap *graph.Snapshot, reference string) (*graph.Node, error) {
	// 1. Exact ID match
	if n, ok := snap.Node(reference); ok {
		return n, nil
	}

	// 2. EIN prefix or name match
	ids := snap.Search(reference, 0)
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("charity not found: %s", reference)
	case 1:
		n, _ := snap.Node(ids[0])
		return n, nil
	}

	limit := min(len(ids), 10)
	lines := make([]string, limit)
	for i := 0; i < limit; i++ {
		n, _ := snap.Node(ids[i])
		lines[i] = fmt.Sprintf("  %s %s %s", truncID(n.ID), n.EIN, truncTitle(n.Name, 50))
	}
	return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a charity ID or full EIN instead.",
		reference, len(ids), strings.Join(lines, "\n"))
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
