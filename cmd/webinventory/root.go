// Package main provides the entry point for the webinventory CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webinventory.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webinventory",
		Short: "Produce a structured content inventory of a website",
		Long: `webinventory crawls a website and produces a structured JSON inventory
of its content. The inventory captures the site-global header and footer,
classifies the content blocks of every page (hero banners, forms, tables,
lists, media galleries, text), and categorizes internal and external links.

The output is CMS-agnostic: it describes what is on the site, not how the
site was built.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
