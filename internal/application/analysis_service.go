package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/infrastructure/gemini"
)

// ErrAnalysisFailed covers provider errors, timeouts, and responses that do
// not conform to the expected JSON contract. Nothing is retried; a single
// failed attempt surfaces to the caller.
var ErrAnalysisFailed = errors.New("analysis failed")

// Coordinates is a lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Competitor is one nearby competing business in the simulated market.
type Competitor struct {
	Name   string  `json:"name" validate:"required"`
	Rating float64 `json:"rating" validate:"min=0,max=5"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// AlternativeLocation suggests a different area for the business.
type AlternativeLocation struct {
	Area   string `json:"area" validate:"required"`
	Reason string `json:"reason"`
}

// SWOT is the four-list breakdown of the analysis.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// AnalysisResult is the ephemeral market-viability payload rendered for one
// query. It is never persisted.
type AnalysisResult struct {
	MarketScore           int                   `json:"market_score" validate:"min=0,max=100"`
	CompetitionLevel      string                `json:"competition_level" validate:"required,oneof=Low Medium High"`
	TotalCompetitorsCount int                   `json:"total_competitors_count" validate:"min=0"`
	AverageMarketRating   float64               `json:"average_market_rating" validate:"min=0,max=5"`
	CenterCoords          Coordinates           `json:"center_coords"`
	Competitors           []Competitor          `json:"competitors" validate:"dive"`
	AlternativeLocations  []AlternativeLocation `json:"alternative_locations" validate:"dive"`
	GapAnalysis           string                `json:"gap_analysis"`
	SWOT                  SWOT                  `json:"swot"`
	SuggestedNames        []string              `json:"suggested_names"`
}

// AnalysisService builds the consultant prompt, calls the text provider, and
// parses the structured response.
type AnalysisService struct {
	Gen      gemini.Generator
	Logger   *logrus.Logger
	Timeout  time.Duration
	validate *validator.Validate
}

func NewAnalysisService(gen gemini.Generator, logger *logrus.Logger, timeout time.Duration) *AnalysisService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnalysisService{
		Gen:      gen,
		Logger:   logger,
		Timeout:  timeout,
		validate: validator.New(),
	}
}

// Analyze runs one market analysis for the query. The provider response must
// be a bare JSON object after fence stripping; anything else fails with
// ErrAnalysisFailed.
func (s *AnalysisService) Analyze(ctx context.Context, query string) (*AnalysisResult, error) {
	if s.Gen == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrAnalysisFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	raw, err := s.Gen.Generate(ctx, buildPrompt(query))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("query", query).Error("ai provider call failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result := &AnalysisResult{}
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), result); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Error("ai response is not valid json")
		}
		return nil, fmt.Errorf("%w: malformed response: %v", ErrAnalysisFailed, err)
	}
	if err := s.validate.Struct(result); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Error("ai response violates the expected schema")
		}
		return nil, fmt.Errorf("%w: schema violation: %v", ErrAnalysisFailed, err)
	}
	return result, nil
}

// StripCodeFences removes Markdown code-fence decoration the provider tends to
// wrap around the JSON payload.
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func buildPrompt(query string) string {
	return fmt.Sprintf(`
Act as an expert Business Consultant and Market Analyst.
The user wants to open: %q.
SIMULATE a complete market analysis.

RETURN JSON ONLY. NO MARKDOWN.
Strictly follow this structure:
{
  "market_score": (Integer 0-100),
  "competition_level": "Low" | "Medium" | "High",
  "total_competitors_count": (Approximate number of similar shops in that area),
  "average_market_rating": (Average star rating of competitors, e.g., 4.1),
  "center_coords": { "lat": Number, "lng": Number },
  "competitors": [
      { "name": "Name", "rating": 4.5, "lat": Number, "lng": Number }
  ],
  "alternative_locations": [
      { "area": "Area Name", "reason": "Why this area is good" }
  ],
  "gap_analysis": "2-3 sentences explaining the gap.",
  "swot": {
    "strengths": [".."],
    "weaknesses": [".."],
    "opportunities": [".."],
    "threats": [".."]
  },
  "suggested_names": ["Name 1", "Name 2"]
}
`, query)
}
