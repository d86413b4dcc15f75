package commands

import "github.com/spf13/cobra"

// NewSchemaCmd creates the schema command. root is walked to collect command schemas.
func NewSchemaCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect command schemas",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "commands",
		Short: "Show command argument schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type resp struct {
				Commands []commandArgSchema `json:"commands"`
			}
			schemas := make([]commandArgSchema, 0)
			collectCommandSchemas(root, &schemas)
			return printSuccess(cmd, resp{Commands: schemas})
		},
	})
	namespaceIndex(cmd)
	return cmd
}
