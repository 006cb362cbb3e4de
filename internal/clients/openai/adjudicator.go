package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
)

// Adjudicator compares a free-text description (and optionally a sketch
// image) against two candidate pictures and produces a structured verdict.
// It never returns an error: every failure mode degrades to a "none" verdict
// with diagnostic text, so the owning protocol transition can still commit.
type Adjudicator interface {
	Adjudicate(ctx context.Context, req AdjudicationRequest) *Verdict
}

type AdjudicationRequest struct {
	SessionID *uuid.UUID
	CallType  string // "adjudicate" | "preview"
	Text      string
	SketchURL string
	PictureA  types.Picture
	PictureB  types.Picture
}

// Verdict is side-relative: Matched names picture slot "A" or "B" (or
// "none"), not an outcome label. The session service maps slots to its own
// label strings.
type Verdict struct {
	Matched    string `json:"matched"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
	AnalysisA  string `json:"analysis_a"`
	AnalysisB  string `json:"analysis_b"`
}

const VerdictNone = "none"

// CallRecorder persists a diagnostic record of each oracle round trip.
// Implementations must be best-effort; the adjudicator ignores their errors.
type CallRecorder interface {
	Record(ctx context.Context, entry *types.OracleCallLog)
}

type adjudicator struct {
	log      *logger.Logger
	client   Client
	recorder CallRecorder
}

func NewAdjudicator(log *logger.Logger, client Client, recorder CallRecorder) (Adjudicator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("openai client required")
	}
	return &adjudicator{
		log:      log.With("service", "Adjudicator"),
		client:   client,
		recorder: recorder,
	}, nil
}

const adjudicatorSystem = "You are an impartial judge in a double-blind image prediction experiment. " +
	"You compare a written (and optionally sketched) description, made before either image was seen, " +
	"against two candidate photographs. You answer ONLY in JSON."

func (a *adjudicator) Adjudicate(ctx context.Context, req AdjudicationRequest) *Verdict {
	ctx = defaultCtx(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	user := buildAdjudicationPrompt(req)

	images := []ImageInput{
		{ImageURL: req.PictureA.ImageURL, Detail: "low"},
		{ImageURL: req.PictureB.ImageURL, Detail: "low"},
	}
	if sketch := strings.TrimSpace(req.SketchURL); sketch != "" {
		images = append(images, ImageInput{ImageURL: sketch, Detail: "low"})
	}

	started := time.Now()
	raw, err := a.client.GenerateTextWithImages(ctx, adjudicatorSystem, user, images)
	latency := time.Since(started)

	if err != nil {
		a.log.Warn("Oracle call failed, degrading verdict", "call_type", req.CallType, "error", err)
		a.record(ctx, req, user, raw, latency, false, err)
		return degradedVerdict(fmt.Sprintf("oracle call failed: %v", err))
	}

	out, parseErr := parseVerdictJSON(raw)
	if parseErr == nil {
		a.record(ctx, req, user, raw, latency, true, nil)
		return out
	}

	repaired, repairErr := a.client.GenerateText(
		ctx,
		"You are a JSON repair tool. Output ONLY valid JSON matching the required shape.",
		fmt.Sprintf(
			"Fix the following into valid JSON with keys:\n"+
				"matched (\"A\"|\"B\"|\"none\"), confidence (integer 0-100), reasoning (string), analysis_a (string), analysis_b (string).\n\nRAW:\n%s",
			raw,
		),
	)
	if repairErr != nil {
		a.log.Warn("Oracle output unparseable and repair call failed", "parse_error", parseErr, "repair_error", repairErr)
		a.record(ctx, req, user, raw, latency, false, fmt.Errorf("parse: %v; repair: %v", parseErr, repairErr))
		return degradedVerdict(fmt.Sprintf("oracle output unparseable: %v", parseErr))
	}

	out2, parseErr2 := parseVerdictJSON(repaired)
	if parseErr2 != nil {
		a.log.Warn("Oracle output unparseable after repair", "parse_error", parseErr2)
		a.record(ctx, req, user, repaired, latency, false, fmt.Errorf("parse after repair: %v", parseErr2))
		return degradedVerdict(fmt.Sprintf("oracle output unparseable after repair: %v", parseErr2))
	}
	a.record(ctx, req, user, repaired, latency, true, nil)
	return out2
}

func (a *adjudicator) record(ctx context.Context, req AdjudicationRequest, prompt, response string, latency time.Duration, success bool, callErr error) {
	if a.recorder == nil {
		return
	}
	// The audit row must land even when the oracle call died of the request's
	// own deadline, so the write runs detached from that deadline.
	ctx = context.WithoutCancel(ctx)
	entry := &types.OracleCallLog{
		SessionID: req.SessionID,
		CallType:  req.CallType,
		Model:     a.client.Model(),
		Prompt:    prompt,
		Response:  response,
		Success:   success,
		LatencyMs: latency.Milliseconds(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	a.recorder.Record(ctx, entry)
}

func buildAdjudicationPrompt(req AdjudicationRequest) string {
	var b strings.Builder
	b.WriteString("Return ONLY JSON.\n\n")
	b.WriteString("The first image attached is candidate A. The second image attached is candidate B.\n")
	if strings.TrimSpace(req.SketchURL) != "" {
		b.WriteString("The last image attached is the subject's SKETCH of their prediction, not a candidate.\n")
	}
	b.WriteString("\nThe subject's written description:\n")
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = "(no written description; judge from the sketch alone)"
	}
	b.WriteString(text)
	b.WriteString("\n\nRubric:\n")
	b.WriteString("- Declare a match ONLY if the description identifies a salient feature — a dominant or high-contrast color, a color combination, or a distinctive object or composition — that is clearly present in one candidate and not the other.\n")
	b.WriteString("- Purely generic descriptions (\"colorful\", \"nice\", \"outdoor\") must yield \"none\".\n")
	b.WriteString("- Confidence reflects both how well the rubric is satisfied and how distinctive the two candidates' salient features are from each other.\n")
	b.WriteString("- Do not hallucinate details not visible in the images.\n")
	b.WriteString("\nJSON shape:\n")
	b.WriteString(`{
  "matched": "A|B|none",
  "confidence": 0,
  "reasoning": "string",
  "analysis_a": "what stands out in candidate A",
  "analysis_b": "what stands out in candidate B"
}`)
	return b.String()
}

func parseVerdictJSON(s string) (*Verdict, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty response")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}

	var out Verdict
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}

	out.Matched = strings.TrimSpace(out.Matched)
	switch out.Matched {
	case "A", "B", VerdictNone:
	case "a":
		out.Matched = "A"
	case "b":
		out.Matched = "B"
	case "", "None", "NONE":
		out.Matched = VerdictNone
	default:
		return nil, fmt.Errorf("matched must be A, B or none, got %q", out.Matched)
	}
	if out.Confidence < 0 || out.Confidence > 100 {
		return nil, fmt.Errorf("confidence out of range: %d", out.Confidence)
	}
	if strings.TrimSpace(out.Reasoning) == "" {
		return nil, errors.New("missing reasoning")
	}
	return &out, nil
}

func degradedVerdict(diagnostic string) *Verdict {
	return &Verdict{
		Matched:    VerdictNone,
		Confidence: 0,
		Reasoning:  diagnostic,
		AnalysisA:  diagnostic,
		AnalysisB:  diagnostic,
	}
}

func defaultCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
