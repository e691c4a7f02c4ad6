package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func uploadCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload profile and school images",
	}
	cmd.AddCommand(
		uploadFileCmd("avatar <file>", "Replace your profile picture", func(ctx context.Context, name string, r io.Reader) (string, error) {
			return c.session.Hooks.Users.UploadAvatar(ctx, name, r)
		}),
		uploadFileCmd("logo <file>", "Replace the school logo", func(ctx context.Context, name string, r io.Reader) (string, error) {
			return c.session.Hooks.School.UploadLogo(ctx, name, r)
		}),
	)
	return cmd
}

func uploadFileCmd(use, short string, upload func(context.Context, string, io.Reader) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			defer file.Close()

			url, err := upload(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
