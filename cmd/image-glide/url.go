package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-glide/internal/urlbuild"
)

var urlCmd = &cobra.Command{
	Use:   "url <source-url|attachment-id> <preset>",
	Short: "Print the image URL for a source through a preset",
	Long: `url prints the protocol-relative URL serving the source through the
preset. If the preset is not registered the source URL is printed unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: runURL,
}

var inlineCmd = &cobra.Command{
	Use:   "inline <source-url|attachment-id> <preset>",
	Short: "Render a source through a preset and print it as a data URI",
	Long: `inline renders the image and prints a base64 data URI. Nothing is
printed when the preset or the source file does not exist.`,
	Args: cobra.ExactArgs(2),
	RunE: runInline,
}

func init() {
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(inlineCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.urls.Build(cmd.Context(), urlbuild.ParseRef(args[0]), args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}

func runInline(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ref := urlbuild.ParseRef(args[0])
	uri, err := a.urls.BuildInline(cmd.Context(), ref, args[1])
	if err != nil {
		return err
	}
	if uri == "" {
		logger.Warn().Stringer("source", ref).Str("preset", args[1]).Msg("image not found")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), uri)
	return nil
}
