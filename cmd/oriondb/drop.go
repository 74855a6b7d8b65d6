package main

import (
	"github.com/oriondb/oriondb/internal/ast"
	"github.com/spf13/cobra"
)

var dropTableCmd = &cobra.Command{
	Use:   "drop-table NAME",
	Short: "DROP TABLE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDDL(&ast.DropTableStmt{TableName: args[0]})
	},
}

var renameTableCmd = &cobra.Command{
	Use:   "rename-table OLD NEW",
	Short: "ALTER TABLE OLD RENAME TO NEW",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDDL(&ast.AlterTableStmt{
			TableName:    args[0],
			Kind:         ast.AlterTableRename,
			NewTableName: args[1],
		})
	},
}

func init() {
	rootCmd.AddCommand(dropTableCmd)
	rootCmd.AddCommand(renameTableCmd)
}
