package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/domain/repository"
)

// DefaultLocation is used when a query has no trailing token to derive a
// location from.
const DefaultLocation = "Ahmedabad"

// ReportService owns saved-report persistence and the dashboard aggregates.
type ReportService struct {
	Repo   repository.ReportRepository
	Logger *logrus.Logger

	ES             *elasticsearch.Client
	ESReportsIndex string
}

func NewReportService(repo repository.ReportRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ReportService {
	return &ReportService{Repo: repo, Logger: logger, ES: es, ESReportsIndex: esIndex}
}

// DeriveLocation extracts the location from a query: the last
// whitespace-delimited token, or DefaultLocation when there is none.
func DeriveLocation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return DefaultLocation
	}
	return fields[len(fields)-1]
}

// Create persists a new report for the user. The report title is the raw
// query text; the location is derived from it.
func (s *ReportService) Create(ctx context.Context, userID, title string) (*entity.Report, error) {
	rep := &entity.Report{
		Title:    title,
		UserID:   userID,
		Location: DeriveLocation(title),
	}
	if err := s.Repo.Create(ctx, rep); err != nil {
		return nil, err
	}
	_ = s.indexReport(ctx, rep)
	return rep, nil
}

// ListByUser returns the user's reports, newest first.
func (s *ReportService) ListByUser(ctx context.Context, userID string) ([]*entity.Report, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete removes the report only when it belongs to userID. The bool reports
// whether a row was actually deleted; callers currently surface success either
// way.
func (s *ReportService) Delete(ctx context.Context, reportID, userID string) (bool, error) {
	return s.Repo.DeleteByIDAndUser(ctx, reportID, userID)
}

// TopLocation returns the location occurring most frequently across the given
// reports, or "None" when there are no reports. Ties resolve to the location
// seen first in the input order.
func (s *ReportService) TopLocation(reports []*entity.Report) string {
	if len(reports) == 0 {
		return "None"
	}
	counts := make(map[string]int, len(reports))
	order := make([]string, 0, len(reports))
	for _, r := range reports {
		if r.Location == "" {
			continue
		}
		if _, seen := counts[r.Location]; !seen {
			order = append(order, r.Location)
		}
		counts[r.Location]++
	}
	top, best := "None", 0
	for _, loc := range order {
		if counts[loc] > best {
			top, best = loc, counts[loc]
		}
	}
	return top
}

// Search filters the user's saved reports by free text. Elasticsearch serves
// the query when configured; otherwise it falls back to a database match.
func (s *ReportService) Search(ctx context.Context, userID, q string) ([]*entity.Report, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.Repo.ListByUser(ctx, userID)
	}
	if s.ES != nil && s.ESReportsIndex != "" {
		if reports, err := s.searchES(ctx, userID, q); err == nil {
			return reports, nil
		} else if s.Logger != nil {
			s.Logger.WithError(err).Warn("es report search failed, falling back to sql")
		}
	}
	return s.Repo.SearchByUser(ctx, userID, q)
}

func (s *ReportService) indexReport(ctx context.Context, rep *entity.Report) error {
	if s.ES == nil || s.ESReportsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         rep.ID,
		"title":      rep.Title,
		"location":   rep.Location,
		"user_id":    rep.UserID,
		"created_at": rep.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESReportsIndex, DocumentID: rep.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("report_id", rep.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("report_id", rep.ID).Warn("es index response error")
	}
	return nil
}

func (s *ReportService) searchES(ctx context.Context, userID, q string) ([]*entity.Report, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "location"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": 50,
		"sort": []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESReportsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID        string    `json:"id"`
					Title     string    `json:"title"`
					Location  string    `json:"location"`
					UserID    string    `json:"user_id"`
					CreatedAt time.Time `json:"created_at"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.Report, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, &entity.Report{
			ID:        h.Source.ID,
			Title:     h.Source.Title,
			UserID:    h.Source.UserID,
			Location:  h.Source.Location,
			CreatedAt: h.Source.CreatedAt,
		})
	}
	return out, nil
}
