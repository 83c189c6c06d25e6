package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
)

type stubReportRepo struct {
	reports   []*entity.Report
	nextID    int
	createErr error
}

func (r *stubReportRepo) Create(_ context.Context, rep *entity.Report) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	rep.ID = fmt.Sprintf("r%d", r.nextID)
	rep.CreatedAt = time.Now()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *stubReportRepo) ListByUser(_ context.Context, userID string) ([]*entity.Report, error) {
	var out []*entity.Report
	for i := len(r.reports) - 1; i >= 0; i-- {
		if r.reports[i].UserID == userID {
			out = append(out, r.reports[i])
		}
	}
	return out, nil
}

func (r *stubReportRepo) DeleteByIDAndUser(_ context.Context, reportID, userID string) (bool, error) {
	for i, rep := range r.reports {
		if rep.ID == reportID && rep.UserID == userID {
			r.reports = append(r.reports[:i], r.reports[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubReportRepo) SearchByUser(_ context.Context, userID, q string) ([]*entity.Report, error) {
	q = strings.ToLower(q)
	var out []*entity.Report
	for i := len(r.reports) - 1; i >= 0; i-- {
		rep := r.reports[i]
		if rep.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(rep.Title), q) || strings.Contains(strings.ToLower(rep.Location), q) {
			out = append(out, rep)
		}
	}
	return out, nil
}

func TestDeriveLocation(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"coffee shop in Surat", "Surat"},
		{"bakery", "bakery"},
		{"  spaced   out   query  ", "query"},
		{"", DefaultLocation},
		{"   ", DefaultLocation},
	}
	for _, tc := range cases {
		if got := DeriveLocation(tc.query); got != tc.want {
			t.Errorf("DeriveLocation(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestCreateDerivesLocation(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, nil, nil, "")

	rep, err := svc.Create(context.Background(), "u1", "coffee shop in Surat")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rep.Location != "Surat" {
		t.Errorf("location = %q, want Surat", rep.Location)
	}
	if rep.ID == "" {
		t.Error("expected report to receive an id")
	}
	if rep.Title != "coffee shop in Surat" {
		t.Errorf("title = %q, want the raw query", rep.Title)
	}
}

func TestCreatePropagatesRepoError(t *testing.T) {
	repo := &stubReportRepo{createErr: errors.New("db down")}
	svc := NewReportService(repo, nil, nil, "")

	if _, err := svc.Create(context.Background(), "u1", "bakery in Surat"); err == nil {
		t.Fatal("expected error from repo")
	}
}

func TestTopLocation(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, nil, nil, "")

	t.Run("empty", func(t *testing.T) {
		if got := svc.TopLocation(nil); got != "None" {
			t.Errorf("got %q, want None", got)
		}
	})

	t.Run("majority wins", func(t *testing.T) {
		reports := []*entity.Report{
			{Location: "Surat"},
			{Location: "Ahmedabad"},
			{Location: "Ahmedabad"},
		}
		if got := svc.TopLocation(reports); got != "Ahmedabad" {
			t.Errorf("got %q, want Ahmedabad", got)
		}
	})

	t.Run("tie resolves to first seen", func(t *testing.T) {
		reports := []*entity.Report{
			{Location: "Surat"},
			{Location: "Ahmedabad"},
			{Location: "Surat"},
			{Location: "Ahmedabad"},
		}
		if got := svc.TopLocation(reports); got != "Surat" {
			t.Errorf("got %q, want Surat", got)
		}
	})

	t.Run("blank locations ignored", func(t *testing.T) {
		reports := []*entity.Report{
			{Location: ""},
			{Location: ""},
			{Location: "Rajkot"},
		}
		if got := svc.TopLocation(reports); got != "Rajkot" {
			t.Errorf("got %q, want Rajkot", got)
		}
	})
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, nil, nil, "")
	ctx := context.Background()

	rep, err := svc.Create(ctx, "owner", "bookstore in Surat")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := svc.Delete(ctx, rep.ID, "intruder")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Error("delete by a different user should not remove the report")
	}
	if got, _ := svc.ListByUser(ctx, "owner"); len(got) != 1 {
		t.Fatalf("report should still exist, got %d", len(got))
	}

	deleted, err = svc.Delete(ctx, rep.ID, "owner")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("owner delete should report a removed row")
	}
	if got, _ := svc.ListByUser(ctx, "owner"); len(got) != 0 {
		t.Fatalf("report should be gone, got %d", len(got))
	}
}

func TestSearchBlankQueryListsAll(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, nil, nil, "")
	ctx := context.Background()

	_, _ = svc.Create(ctx, "u1", "coffee shop in Surat")
	_, _ = svc.Create(ctx, "u1", "bakery in Rajkot")
	_, _ = svc.Create(ctx, "u2", "gym in Surat")

	all, err := svc.Search(ctx, "u1", "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d reports, want 2", len(all))
	}

	hits, err := svc.Search(ctx, "u1", "rajkot")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Location != "Rajkot" {
		t.Fatalf("unexpected search hits: %+v", hits)
	}
}
