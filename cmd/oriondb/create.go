package main

import (
	"fmt"
	"strings"

	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/binder"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parsePropertyFlags turns "name:TYPE" pairs (as repeated --prop flags)
// into ast.PropertyDef values; the CLI's stand-in for a grammar's property
// list production.
func parsePropertyFlags(raw []string) ([]ast.PropertyDef, error) {
	out := make([]ast.PropertyDef, 0, len(raw))
	for _, p := range raw {
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed --prop %q, want name:TYPE", p)
		}
		out = append(out, ast.PropertyDef{Name: parts[0], TypeName: strings.ToUpper(parts[1])})
	}
	return out, nil
}

var (
	createNodeProps []string
	createNodePK    string

	createRelProps []string
	createRelSrc   string
	createRelDst   string
	createRelMult  string
)

var createNodeTableCmd = &cobra.Command{
	Use:   "create-node-table NAME",
	Short: "CREATE NODE TABLE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parsePropertyFlags(createNodeProps)
		if err != nil {
			return err
		}
		stmt := &ast.CreateNodeTableStmt{TableName: args[0], Properties: props, PrimaryKey: createNodePK}
		return runDDL(stmt)
	},
}

var createRelTableCmd = &cobra.Command{
	Use:   "create-rel-table NAME",
	Short: "CREATE REL TABLE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parsePropertyFlags(createRelProps)
		if err != nil {
			return err
		}
		stmt := &ast.CreateRelTableStmt{
			TableName:    args[0],
			SrcTableName: createRelSrc,
			DstTableName: createRelDst,
			Multiplicity: createRelMult,
			Properties:   props,
		}
		return runDDL(stmt)
	},
}

var createRdfGraphCmd = &cobra.Command{
	Use:   "create-rdf-graph NAME",
	Short: "CREATE RDF GRAPH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDDL(&ast.CreateRdfGraphStmt{GraphName: args[0]})
	},
}

// runDDL binds stmt against the current catalog snapshot, applies it
// through one Engine.ExecuteDDL transaction, and persists the result.
func runDDL(stmt ast.Stmt) error {
	cat, err := openCatalog(dbPath)
	if err != nil {
		return err
	}
	b := binder.New(cat.Snapshot())
	bound, err := b.Bind(stmt)
	if err != nil {
		return err
	}
	eng := newEngine(cat)
	id, err := eng.ExecuteDDL(bound)
	if err != nil {
		return err
	}
	if err := saveCatalog(cat, dbPath); err != nil {
		return err
	}
	log.Info("ddl_applied", zap.Uint64("table_id", uint64(id)))
	return nil
}

func init() {
	createNodeTableCmd.Flags().StringSliceVar(&createNodeProps, "prop", nil, "property as name:TYPE, repeatable")
	createNodeTableCmd.Flags().StringVar(&createNodePK, "pk", "", "primary key property name (required)")
	_ = createNodeTableCmd.MarkFlagRequired("pk")
	rootCmd.AddCommand(createNodeTableCmd)

	createRelTableCmd.Flags().StringSliceVar(&createRelProps, "prop", nil, "property as name:TYPE, repeatable")
	createRelTableCmd.Flags().StringVar(&createRelSrc, "from", "", "source node table (required)")
	createRelTableCmd.Flags().StringVar(&createRelDst, "to", "", "destination node table (required)")
	createRelTableCmd.Flags().StringVar(&createRelMult, "multiplicity", "MANY_MANY", "ONE_ONE|ONE_MANY|MANY_ONE|MANY_MANY")
	_ = createRelTableCmd.MarkFlagRequired("from")
	_ = createRelTableCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(createRelTableCmd)

	rootCmd.AddCommand(createRdfGraphCmd)
}
