package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFoldersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List your favorites folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			folders, err := client.ListFolders(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintln(out, "No favorites folders found")
				return nil
			}

			rows := make([][]string, 0, len(folders))
			for i, folder := range folders {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					truncateTitle(folder.Title, 60),
					strconv.Itoa(folder.ItemCount),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Items"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
}
