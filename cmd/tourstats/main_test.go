package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tourstats/internal/app/dashboard"
	"tourstats/internal/config"
	"tourstats/internal/models"
	"tourstats/internal/store"
)

func intPtr(v int) *int { return &v }

func testStore(t *testing.T) *store.Store {
	t.Helper()

	mk := func(date string, city string, capacity int, songs ...string) models.TourDate {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		r := models.NewTourDate(d)
		r.TourName = "World Tour"
		r.Country = "France"
		r.City = city
		r.Venue = city + " Arena"
		r.VenueCapacity = intPtr(capacity)
		r.Setlist = songs
		return r
	}

	s := store.New(nil)
	s.Swap(store.NewDataset([]models.TourDate{
		mk("2019-06-01", "Lyon", 15000, "Intro", "Hit"),
		mk("2020-06-01", "Paris", 40000, "A", "B", "C", "D"),
		mk("2021-06-01", "Paris", 45000, "Hit", "B"),
	}))
	return s
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "tourstats version "+Version) {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "sideways"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestRunReportText(t *testing.T) {
	svc := dashboard.New(testStore(t))
	opts := reportOptions{yearMin: 2020, song: "B"}
	changed := func(flag string) bool { return flag == "year-min" }

	var out bytes.Buffer
	if err := runReport(context.Background(), &out, svc, opts, changed); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Years 2020-2021", "2 matching dates", "Top songs", "Paris", "Setlist position of \"B\""} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in report:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Lyon") {
		t.Fatalf("2019 show should be filtered out:\n%s", text)
	}
}

func TestRunReportJSON(t *testing.T) {
	svc := dashboard.New(testStore(t))
	opts := reportOptions{countries: []string{"Germany"}, asJSON: true}

	var out bytes.Buffer
	if err := runReport(context.Background(), &out, svc, opts, func(string) bool { return false }); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	var decoded report
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.Home.Matched != 0 {
		t.Fatalf("expected no matches for Germany, got %d", decoded.Home.Matched)
	}
	if decoded.Positions != nil {
		t.Fatal("expected no positions without --song")
	}
}

func TestHTTPHandlerServesAPIAndMetrics(t *testing.T) {
	cfg := &config.Config{}
	cfg.Metrics.Path = "/metrics"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	handler := newHTTPHandler(cfg, testStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/cities", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatal("expected CORS header on API response")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"tourstats_dataset_rows 3", "tourstats_dataset_loaded_timestamp_seconds", "tourstats_query_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
	if strings.Contains(body, "tourstats_dataset_loaded_timestamp_seconds 0\n") {
		t.Fatal("expected a non-zero load timestamp")
	}
}

func TestHTTPHandlerMetricsDisabled(t *testing.T) {
	cfg := &config.Config{}

	handler := newHTTPHandler(cfg, testStore(t))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with metrics disabled, got %d", rr.Code)
	}
}

func TestReportFlagsKeepCommasInNames(t *testing.T) {
	cmd := reportCmd()
	if err := cmd.Flags().Parse([]string{
		"--country", "Korea, Republic of",
		"--tour", "Steel Wheels / Urban Jungle, Europe 1990",
		"--tour", "Voodoo Lounge",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	countries, err := cmd.Flags().GetStringArray("country")
	if err != nil {
		t.Fatalf("country flag: %v", err)
	}
	if len(countries) != 1 || countries[0] != "Korea, Republic of" {
		t.Fatalf("unexpected countries %#v", countries)
	}

	tours, err := cmd.Flags().GetStringArray("tour")
	if err != nil {
		t.Fatalf("tour flag: %v", err)
	}
	if len(tours) != 2 || tours[0] != "Steel Wheels / Urban Jungle, Europe 1990" {
		t.Fatalf("unexpected tours %#v", tours)
	}
}
