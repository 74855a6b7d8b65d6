// Command oriondb is the CLI front end over the catalog/binder/planner/
// copypipeline stack: each subcommand constructs an ast.Stmt directly from
// its flags (this core never parses query text — the *Parser* collaborator
// spec.md §1 describes is explicitly out of scope) and hands it to
// internal/binder then internal/engine, grounded on cuemby-warren's
// cmd/warren cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath string
	log    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "oriondb",
	Short: "oriondb is an embedded labeled-property-graph database's bulk-load CLI",
	Long: `oriondb drives CREATE TABLE / COPY FROM / COPY TO / serve-admin against a
single on-disk catalog file, the same way kuzu's shell drives its Catalog
and CopyFromPipeline subsystems.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "oriondb.catalog", "path to the catalog file")
	cobra.OnInitialize(func() {
		l, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
			os.Exit(1)
		}
		log = l
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
