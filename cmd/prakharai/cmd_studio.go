package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
)

var (
	generateRatio string
	generateRef   string
	generateOut   string
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateRatio, "ratio", "1:1", "aspect ratio (1:1, 3:4, 4:3, 9:16, 16:9)")
	generateCmd.Flags().StringVar(&generateRef, "ref", "", "reference image to edit")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "write the decoded image to this file")
}

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate or edit an image in the studio",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		prompt := ""
		if len(args) > 0 {
			prompt = args[0]
		}

		ratio := genai.AspectRatio(generateRatio)
		if !ratio.Valid() {
			return fmt.Errorf("invalid aspect ratio %q (want one of %v)", generateRatio, genai.AspectRatios)
		}

		var ref *types.Attachment
		if generateRef != "" {
			ref, err = loadAttachment(generateRef)
			if err != nil {
				return err
			}
		}

		img, err := a.studio.Generate(cmd.Context(), prompt, ratio, ref)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Saved %s image %s to the gallery.\n", img.Type, img.ID)
		if generateOut != "" {
			if err := writeDataURI(img.URL, generateOut); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Wrote %s\n", generateOut)
		}
		return nil
	},
}

// writeDataURI decodes a base64 data URI to a file.
func writeDataURI(uri, path string) error {
	_, payload, found := strings.Cut(uri, ";base64,")
	if !found {
		return fmt.Errorf("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
