package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/prakharai/pkg/genai"
)

// SampleRate is the PCM sample rate of synthesized speech.
const SampleRate = 24000

const defaultEditInstruction = "Edit this image based on the context."

// Client implements genai.Client against the Gemini REST API.
type Client struct {
	config     *genai.Config
	httpClient *http.Client
}

// New creates a Gemini client with the given configuration.
func New(config *genai.Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []toolDecl        `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text         string              `json:"text,omitempty"`
	InlineData   *inlineData         `json:"inlineData,omitempty"`
	FunctionCall *genai.FunctionCall `json:"functionCall,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type toolDecl struct {
	FunctionDeclarations []genai.FunctionDecl `json:"functionDeclarations"`
}

type generationConfig struct {
	ImageConfig        *imageConfig  `json:"imageConfig,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

func (c *Client) endpoint(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.config.BaseURL, model, method)
}

// post sends a generateContent-style request and returns the raw response body.
func (c *Client) post(ctx context.Context, url string, reqBody *generateRequest) ([]byte, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// GenerateImage issues a single image generation or edit request and returns
// the first inlined image payload as a data URI.
func (c *Client) GenerateImage(ctx context.Context, req genai.ImageRequest) (string, error) {
	if !req.AspectRatio.Valid() {
		return "", &genai.GenerationError{Op: "generate image", Err: fmt.Errorf("invalid aspect ratio %q", req.AspectRatio)}
	}

	var parts []part
	if req.Reference != nil {
		parts = append(parts, part{InlineData: &inlineData{MIMEType: req.Reference.MIMEType, Data: req.Reference.Data}})
		prompt := req.Prompt
		if prompt == "" {
			prompt = defaultEditInstruction
		}
		parts = append(parts, part{Text: prompt})
	} else {
		parts = append(parts, part{Text: req.Prompt})
	}

	reqBody := &generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: string(req.AspectRatio)},
		},
	}

	respBody, err := c.post(ctx, c.endpoint(c.config.ImageModel, "generateContent"), reqBody)
	if err != nil {
		return "", &genai.GenerationError{Op: "generate image", Err: err}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", &genai.GenerationError{Op: "generate image", Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(genResp.Candidates) == 0 {
		return "", &genai.GenerationError{Op: "generate image", Err: fmt.Errorf("no candidates in response")}
	}

	for _, p := range genResp.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return fmt.Sprintf("data:%s;base64,%s", mime, p.InlineData.Data), nil
		}
	}
	return "", &genai.GenerationError{Op: "generate image", Err: fmt.Errorf("no image data found in response")}
}

// Synthesize converts text to speech and returns the raw PCM payload.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = c.config.Voice
	}
	reqBody := &generateRequest{
		Contents: []content{{Parts: []part{{Text: "Read this clearly: " + text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoice{VoiceName: voice}},
			},
		},
	}

	respBody, err := c.post(ctx, c.endpoint(c.config.TTSModel, "generateContent"), reqBody)
	if err != nil {
		return nil, &genai.GenerationError{Op: "synthesize", Err: err}
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, &genai.GenerationError{Op: "synthesize", Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(genResp.Candidates) == 0 {
		return nil, &genai.GenerationError{Op: "synthesize", Err: fmt.Errorf("no candidates in response")}
	}

	for _, p := range genResp.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			audio, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, &genai.GenerationError{Op: "synthesize", Err: fmt.Errorf("decoding audio: %w", err)}
			}
			return audio, nil
		}
	}
	return nil, &genai.GenerationError{Op: "synthesize", Err: fmt.Errorf("no audio data found in response")}
}
