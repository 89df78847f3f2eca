package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/prakharai/pkg/genai/gemini"
)

var speakOut string

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringVar(&speakOut, "out", "speech.wav", "output WAV file")
}

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Synthesize text to speech (24 kHz mono WAV)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		pcm, err := a.client.Synthesize(cmd.Context(), args[0], a.cfg.GenAI.Voice)
		if err != nil {
			return err
		}

		wav := encodeWAV(pcm, gemini.SampleRate, 1)
		if err := os.WriteFile(speakOut, wav, 0644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes)\n", speakOut, len(wav))
		return nil
	},
}

// encodeWAV wraps 16-bit little-endian PCM in a RIFF/WAVE header.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	byteRate := sampleRate * channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
