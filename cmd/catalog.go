package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/frahmantamala/catalog-connector/internal/category"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	"github.com/spf13/cobra"
)

var (
	listAge int

	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "Inspect categories through the backend",
	}

	categoriesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := initializeDependencies()
			if err != nil {
				return err
			}
			defer deps.Close()

			var categories []category.CategoryResponse
			if cmd.Flags().Changed("age") {
				categories, err = deps.Categories.CategoriesForAge(listAge)
			} else {
				categories, err = deps.Categories.GetAllCategories()
			}
			if err != nil {
				return err
			}

			return printCategories(cmd.OutOrStdout(), categories)
		},
	}

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Read and write settings through the backend",
	}

	settingsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := initializeDependencies()
			if err != nil {
				return err
			}
			defer deps.Close()
			list, err := deps.Settings.List()
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), list)
		},
	}

	settingsGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := initializeDependencies()
			if err != nil {
				return err
			}
			defer deps.Close()
			st, err := deps.Settings.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.Value)
			return nil
		},
	}

	settingsSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or replace a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := initializeDependencies()
			if err != nil {
				return err
			}
			defer deps.Close()
			if err := deps.RequireWriter(); err != nil {
				return err
			}
			_, err = deps.Settings.Set(args[0], args[1])
			return err
		},
	}

	settingsDeleteCmd = &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := initializeDependencies()
			if err != nil {
				return err
			}
			defer deps.Close()
			if err := deps.RequireWriter(); err != nil {
				return err
			}
			return deps.Settings.Delete(args[0])
		},
	}
)

func init() {
	categoriesListCmd.Flags().IntVar(&listAge, "age", 0, "only show categories suitable for this age")
	categoriesCmd.AddCommand(categoriesListCmd)

	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsDeleteCmd)
}

func printCategories(w io.Writer, categories []category.CategoryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMIN AGE\tSORT")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.ID, c.Name, c.MinAge, c.SortOrder)
	}
	return tw.Flush()
}

func printSettings(w io.Writer, list []*settings.Setting) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Value)
	}
	return tw.Flush()
}
