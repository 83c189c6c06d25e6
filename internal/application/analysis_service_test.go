package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

const validAnalysisJSON = `{
  "market_score": 72,
  "competition_level": "Medium",
  "total_competitors_count": 14,
  "average_market_rating": 4.1,
  "center_coords": {"lat": 23.02, "lng": 72.57},
  "competitors": [
    {"name": "Brew Bros", "rating": 4.5, "lat": 23.03, "lng": 72.58}
  ],
  "alternative_locations": [
    {"area": "Bodakdev", "reason": "Dense office footfall"}
  ],
  "gap_analysis": "No late-night options in the area.",
  "swot": {
    "strengths": ["First mover"],
    "weaknesses": ["Parking"],
    "opportunities": ["Delivery"],
    "threats": ["Chains"]
  },
  "suggested_names": ["Karma Cafe"]
}`

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  \n```json{\"a\":1}```\n ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + validAnalysisJSON + "\n```"}
	svc := NewAnalysisService(gen, nil, time.Second)

	result, err := svc.Analyze(context.Background(), "coffee shop in Ahmedabad")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.MarketScore != 72 {
		t.Errorf("market score = %d, want 72", result.MarketScore)
	}
	if result.CompetitionLevel != "Medium" {
		t.Errorf("competition level = %q, want Medium", result.CompetitionLevel)
	}
	if len(result.Competitors) != 1 || result.Competitors[0].Name != "Brew Bros" {
		t.Errorf("unexpected competitors: %+v", result.Competitors)
	}
	if !strings.Contains(gen.prompt, `"coffee shop in Ahmedabad"`) {
		t.Error("prompt should embed the quoted query")
	}
}

func TestAnalyzeProviderError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewAnalysisService(gen, nil, time.Second)

	_, err := svc.Analyze(context.Background(), "bakery in Surat")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("err = %v, want ErrAnalysisFailed", err)
	}
}

func TestAnalyzeMalformedJSON(t *testing.T) {
	gen := &stubGenerator{response: "Sure! Here is your analysis: the market looks great."}
	svc := NewAnalysisService(gen, nil, time.Second)

	_, err := svc.Analyze(context.Background(), "bakery in Surat")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("err = %v, want ErrAnalysisFailed", err)
	}
}

func TestAnalyzeSchemaViolations(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{
			"score out of range",
			strings.Replace(validAnalysisJSON, `"market_score": 72`, `"market_score": 150`, 1),
		},
		{
			"bad competition level",
			strings.Replace(validAnalysisJSON, `"competition_level": "Medium"`, `"competition_level": "Extreme"`, 1),
		},
		{
			"competitor rating out of range",
			strings.Replace(validAnalysisJSON, `"rating": 4.5`, `"rating": 9.9`, 1),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{response: tc.response}
			svc := NewAnalysisService(gen, nil, time.Second)
			if _, err := svc.Analyze(context.Background(), "x in y"); !errors.Is(err, ErrAnalysisFailed) {
				t.Fatalf("err = %v, want ErrAnalysisFailed", err)
			}
		})
	}
}
