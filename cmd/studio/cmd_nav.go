package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/internal/nav"
)

// navCmd resolves a dashboard path the way the shell does, which makes the
// routing rules scriptable and easy to poke at.
var navCmd = &cobra.Command{
	Use:   "nav <path>",
	Short: "Resolve a dashboard path to its view",
	Args:  cobra.ExactArgs(1),
	RunE:  runNav,
}

func runNav(cmd *cobra.Command, args []string) error {
	view := nav.DeriveActiveView(args[0])
	fmt.Printf("%s -> %s (%s)\n", args[0], view, nav.PageTitle(view))
	return nil
}
