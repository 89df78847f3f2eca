package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/prakharai/internal/chat"
	"github.com/user/prakharai/internal/chat/tools"
	"github.com/user/prakharai/internal/config"
	"github.com/user/prakharai/internal/delivery"
	"github.com/user/prakharai/internal/store"
	"github.com/user/prakharai/internal/studio"
	"github.com/user/prakharai/internal/timer"
	"github.com/user/prakharai/internal/types"
	"github.com/user/prakharai/pkg/genai"
	"github.com/user/prakharai/pkg/genai/gemini"
)

// app wires the stores, generation client, timers, and orchestrator for one
// command invocation.
type app struct {
	cfg      *config.Config
	sessions *store.SessionStore
	gallery  *store.GalleryStore
	users    *store.UserStore
	client   genai.Client
	timers   *timer.Manager
	deliver  *delivery.Registry
	orch     *chat.Orchestrator
	studio   *studio.Studio
}

func newApp() (*app, error) {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	snaps := store.NewSnapshots(cfg.DataDir)
	sessions := store.NewSessionStore(snaps)
	gallery := store.NewGalleryStore(snaps)
	users := store.NewUserStore(snaps)

	client := gemini.New(&genai.Config{
		BaseURL:    cfg.GenAI.BaseURL,
		APIKey:     cfg.GenAI.APIKey,
		ChatModel:  cfg.GenAI.ChatModel,
		ImageModel: cfg.GenAI.ImageModel,
		TTSModel:   cfg.GenAI.TTSModel,
		Voice:      cfg.GenAI.Voice,
	})

	deliver := delivery.NewRegistry()
	timers := timer.New(func(t *types.AppTimer) {
		deliver.Deliver(fmt.Sprintf("Timer %q finished (%d seconds).", t.Label, t.Duration))
	})

	registry := chat.NewRegistry()
	registry.Register(tools.NewSetTimer(timers))
	registry.Register(tools.NewReadURL())

	history := chat.NewHistoryBuilder(cfg.GenAI.MaxContextTokens, cfg.GenAI.OutputReserve)
	system := func() string {
		name := ""
		if u := users.Get(); u != nil {
			name = u.Name
		}
		return chat.SystemInstruction(name)
	}
	orch := chat.New(client, sessions, history, registry, system)

	return &app{
		cfg:      cfg,
		sessions: sessions,
		gallery:  gallery,
		users:    users,
		client:   client,
		timers:   timers,
		deliver:  deliver,
		orch:     orch,
		studio:   studio.New(client, gallery),
	}, nil
}

// loadAttachment reads an image file into a base64 attachment, sniffing the
// MIME type from the content.
func loadAttachment(path string) (*types.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("not an image file: %s (%s)", filepath.Base(path), mime)
	}
	return &types.Attachment{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mime,
	}, nil
}
