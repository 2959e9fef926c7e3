package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itsaavisos/gateway/internal/graph"
)

func TestNormalizeFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mail string
		want bool
	}{
		{"valid systems", "2021S12345@school.edu", true},
		{"valid lowercase code", "2021s12345@school.edu", true},
		{"valid mechatronics", "1999K00001@school.edu", true},
		{"empty mail", "", false},
		{"staff mail", "jane.doe@school.edu", false},
		{"wrong code letter", "2021X12345@school.edu", false},
		{"too short", "2021S1234@school.edu", false},
		{"too long", "2021S123456@school.edu", false},
		{"code in wrong position", "202S112345@school.edu", false},
		{"trailing garbage", "2021S12345x@school.edu", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := normalize(graph.User{ID: "u", DisplayName: "d", Mail: tt.mail})
			if ok != tt.want {
				t.Errorf("normalize(%q) included = %v, want %v", tt.mail, ok, tt.want)
			}
		})
	}
}

func TestProgramFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"2021S12345", "Systems Engineering"},
		{"2021s12345", "Systems Engineering"},
		{"2021D12345", "Industrial Engineering"},
		{"2021G12345", "Business Management Engineering"},
		{"2021T12345", "Electromechanical Engineering"},
		{"2021K12345", "Mechatronics Engineering"},
		{"2021X12345", ProgramNotFound},
		{"21", ProgramNotFound},
	}
	for _, tt := range tests {
		if got := programFor(tt.id); got != tt.want {
			t.Errorf("programFor(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func newFakeDirectory(t *testing.T, pages []graph.UserPage) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	page := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if page >= len(pages) {
			t.Errorf("unexpected extra page request %d", page)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		current := pages[page]
		if current.NextLink != "" {
			current.NextLink = srv.URL + "/users?$skiptoken=" + current.NextLink
		}
		page++
		_ = json.NewEncoder(w).Encode(current)
	}))
	return srv
}

func TestListSortsAndReindexes(t *testing.T) {
	t.Parallel()

	srv := newFakeDirectory(t, []graph.UserPage{
		{
			Value: []graph.User{
				{ID: "u3", DisplayName: "Carla", Mail: "2021T00003@school.edu"},
				{ID: "ignored", DisplayName: "Staff", Mail: "staff@school.edu"},
			},
			NextLink: "page2",
		},
		{
			Value: []graph.User{
				{ID: "u1", DisplayName: "Ana", Mail: "2020S00001@school.edu"},
				{ID: "u2", DisplayName: "Bruno", Mail: "2022K00002@school.edu"},
			},
		},
	})
	defer srv.Close()

	svc := NewService(nil, graph.NewClient(nil, srv.URL, time.Second), 10)
	records, err := svc.List(context.Background(), graph.Token("tok"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	wantOrder := []string{"Ana", "Bruno", "Carla"}
	for i, record := range records {
		if record.DisplayName != wantOrder[i] {
			t.Errorf("record %d display name = %q, want %q", i, record.DisplayName, wantOrder[i])
		}
		if record.SequentialID != i+1 {
			t.Errorf("record %d sequential id = %d, want %d", i, record.SequentialID, i+1)
		}
	}
	if records[0].InstitutionalID != "2020S00001" || records[0].Program != "Systems Engineering" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[0].UserID != "u1" {
		t.Errorf("record 0 user id = %q", records[0].UserID)
	}
}

func TestListKeepsFetchOrderForEqualNames(t *testing.T) {
	t.Parallel()

	srv := newFakeDirectory(t, []graph.UserPage{
		{
			Value: []graph.User{
				{ID: "first", DisplayName: "Ana", Mail: "2020S00001@school.edu"},
				{ID: "second", DisplayName: "Ana", Mail: "2021D00002@school.edu"},
			},
			NextLink: "page2",
		},
		{
			Value: []graph.User{
				{ID: "third", DisplayName: "Ana", Mail: "2022K00003@school.edu"},
			},
		},
	})
	defer srv.Close()

	svc := NewService(nil, graph.NewClient(nil, srv.URL, time.Second), 10)
	records, err := svc.List(context.Background(), graph.Token("tok"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"first", "second", "third"}
	if len(records) != len(wantIDs) {
		t.Fatalf("records = %d, want %d", len(records), len(wantIDs))
	}
	for i, record := range records {
		if record.UserID != wantIDs[i] {
			t.Errorf("record %d user id = %q, want %q", i, record.UserID, wantIDs[i])
		}
	}
}

func TestListEmptyDirectory(t *testing.T) {
	t.Parallel()

	srv := newFakeDirectory(t, []graph.UserPage{{}})
	defer srv.Close()

	svc := NewService(nil, graph.NewClient(nil, srv.URL, time.Second), 10)
	records, err := svc.List(context.Background(), graph.Token("tok"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("records = %v, want empty non-nil slice", records)
	}
}

func TestListAbortsOnUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	svc := NewService(nil, graph.NewClient(nil, srv.URL, time.Second), 10)
	records, err := svc.List(context.Background(), graph.Token("tok"))
	if err == nil {
		t.Fatal("expected error")
	}
	if records != nil {
		t.Fatalf("expected no partial result, got %v", records)
	}
	statusErr, ok := graph.AsStatusError(err)
	if !ok || statusErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListRespectsPageCap(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always hand back a continuation link: an endless directory.
		_ = json.NewEncoder(w).Encode(graph.UserPage{NextLink: srv.URL + "/users?$skiptoken=again"})
	}))
	defer srv.Close()

	svc := NewService(nil, graph.NewClient(nil, srv.URL, time.Second), 3)
	_, err := svc.List(context.Background(), graph.Token("tok"))
	if err != ErrTooManyPages {
		t.Fatalf("err = %v, want ErrTooManyPages", err)
	}
}
