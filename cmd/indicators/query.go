package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/indicators/internal/http/routes"
	"github.com/briangreenhill/indicators/internal/indicator"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Resolve every indicator once and print the list as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		items := a.resolver.ResolveAll(cmd.Context(), a.catalog.List())
		return printJSON(cmd.OutOrStdout(), indicator.NewList(time.Now(), items))
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Resolve one indicator and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		def, ok := a.catalog.Get(args[0])
		if !ok {
			if err := printJSON(cmd.OutOrStdout(), indicator.ErrorBody{Error: indicator.MessageNotFound}); err != nil {
				return err
			}
			return fmt.Errorf("unknown indicator %q", args[0])
		}
		return printJSON(cmd.OutOrStdout(), a.resolver.Resolve(cmd.Context(), def))
	},
}

func printJSON(w io.Writer, v any) error {
	b, err := routes.EncodeJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
