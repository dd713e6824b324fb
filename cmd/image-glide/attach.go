package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-glide/internal/attachment"
	"github.com/ironsheep/image-glide/internal/config"
)

var attachDB string

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage the attachment id to URL database",
}

var attachAddCmd = &cobra.Command{
	Use:   "add <id> <url>",
	Short: "Record the upload URL of an attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachAdd,
}

var attachGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print the upload URL of an attachment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttachGet,
}

func init() {
	attachCmd.PersistentFlags().StringVar(&attachDB, "db", "", "attachment database (overrides attachments_db)")
	attachCmd.AddCommand(attachAddCmd, attachGetCmd)
	rootCmd.AddCommand(attachCmd)
}

func openAttachmentStore() (*attachment.Store, error) {
	path := attachDB
	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		path = cfg.AttachmentsDB
	}
	if path == "" {
		return nil, errors.New("no attachment database: set attachments_db or --db")
	}
	return attachment.OpenStore(path)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid attachment id %q", s)
	}
	return id, nil
}

func runAttachAdd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := openAttachmentStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(cmd.Context(), id, args[1]); err != nil {
		return err
	}
	logger.Info().Int64("id", id).Str("url", args[1]).Msg("attachment stored")
	return nil
}

func runAttachGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := openAttachmentStore()
	if err != nil {
		return err
	}
	defer store.Close()

	u, err := store.AttachmentURL(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}
