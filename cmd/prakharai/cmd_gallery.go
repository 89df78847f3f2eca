package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/prakharai/internal/types"
)

var galleryExportOut string

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd, galleryDeleteCmd, galleryExportCmd)
	galleryExportCmd.Flags().StringVar(&galleryExportOut, "out", "image.png", "output file")
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage generated images",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated images, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		images := a.gallery.List()
		if len(images) == 0 {
			fmt.Println("No images yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPROMPT\tCREATED")
		for _, img := range images {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				img.ID,
				img.Type,
				truncate(img.Prompt, 40),
				img.Timestamp.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var galleryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.gallery.Remove(types.ImageID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Image %s deleted.\n", args[0])
		return nil
	},
}

var galleryExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write an image to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		for _, img := range a.gallery.List() {
			if img.ID == types.ImageID(args[0]) {
				if err := writeDataURI(img.URL, galleryExportOut); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Wrote %s\n", galleryExportOut)
				return nil
			}
		}
		return fmt.Errorf("image not found: %s", args[0])
	},
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
