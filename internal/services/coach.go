package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CoachConfig selects and configures the commentary strategy.
type CoachConfig struct {
	Enabled  bool
	Provider string // "external_api" | "local_llm"
	Endpoint string
	Model    string
	APIKey   string
}

const (
	coachTimeout        = 25 * time.Second
	coachMaxPerGame     = 5
)

// CoachService produces optional move commentary. It is a pure side
// effect: a failure or timeout never changes analysis outcomes, and the
// caller simply stores a nil Commentary.
type CoachService struct {
	cfg     CoachConfig
	opening *OpeningBookService
	client  *http.Client
}

func NewCoachService(cfg CoachConfig, opening *OpeningBookService) *CoachService {
	return &CoachService{
		cfg:     cfg,
		opening: opening,
		client:  &http.Client{Timeout: coachTimeout},
	}
}

// CommentOn returns commentary for one move, or nil if commentary is
// disabled, the per-game cap is reached, the move is a known book move,
// or the call fails or times out for any reason.
func (c *CoachService) CommentOn(ctx context.Context, commentaryCount int, fen, moveUCI, classification string, halfMove int) *string {
	if !c.cfg.Enabled {
		return nil
	}
	if commentaryCount >= coachMaxPerGame {
		return nil
	}
	if c.opening != nil && c.opening.IsOpeningPhase(halfMove) && c.opening.Contains(strings.ToLower(moveUCI)) {
		return nil
	}
	// Only narrate moves worth narrating; best/excellent/good moves rarely
	// need commentary and would burn the per-game cap on noise.
	if classification == "best" || classification == "excellent" || classification == "good" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, coachTimeout)
	defer cancel()

	var (
		text string
		err  error
	)
	switch c.cfg.Provider {
	case "local_llm":
		text, err = c.callLocalLLM(ctx, fen, moveUCI, classification)
	default:
		text, err = c.callExternalAPI(ctx, fen, moveUCI, classification)
	}
	if err != nil || text == "" {
		return nil
	}
	return &text
}

type coachRequest struct {
	FEN            string `json:"fen"`
	Move           string `json:"move"`
	Classification string `json:"classification"`
	Model          string `json:"model,omitempty"`
}

type coachResponse struct {
	Commentary string `json:"commentary"`
}

func (c *CoachService) callExternalAPI(ctx context.Context, fen, moveUCI, classification string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("coach: no endpoint configured")
	}

	payload, err := json.Marshal(coachRequest{FEN: fen, Move: moveUCI, Classification: classification, Model: c.cfg.Model})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coach: external api returned %d", resp.StatusCode)
	}

	var out coachResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Commentary, nil
}

// callLocalLLM hits a locally hosted completion endpoint (e.g. an
// Ollama-shaped server) using the same request/response shape as the
// external API, just a different default endpoint.
func (c *CoachService) callLocalLLM(ctx context.Context, fen, moveUCI, classification string) (string, error) {
	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:11434/api/generate"
	}
	req := c.cfg
	req.Endpoint = endpoint
	return (&CoachService{cfg: req, client: c.client}).callExternalAPI(ctx, fen, moveUCI, classification)
}
