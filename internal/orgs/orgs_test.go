package orgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAmpelGetStatusGreen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, " GREEN \n")
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	a := NewAmpel(host, "/status", time.Second, discardLogger())
	a.url = srv.URL // avoid forcing https in the test

	allowed, err := a.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !allowed {
		t.Fatal("expected green to permit dispensing")
	}
}

func TestAmpelGetStatusRequestFailureIsNotGreen(t *testing.T) {
	a := NewAmpel("127.0.0.1:1", "/status", 10*time.Millisecond, discardLogger())
	allowed, err := a.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus should not propagate request errors: %v", err)
	}
	if allowed {
		t.Fatal("a failed request must not permit dispensing")
	}
}

func TestVISGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"beer": 3}`)
	}))
	defer srv.Close()

	v := NewVIS(srv.URL, "key", time.Second, discardLogger())
	entitled, err := v.GetStatus(context.Background(), "abcdef")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !entitled {
		t.Fatal("expected positive beer balance to entitle")
	}
}

func TestVISReportDispensed(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewVIS(srv.URL, "key", time.Second, discardLogger())
	if err := v.ReportDispensed(context.Background(), "abcdef", 3); err != nil {
		t.Fatalf("ReportDispensed: %v", err)
	}
	if gotPath != "/coffee/dispensed/abcdef" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestAMIVGetStatusResolvesAndCaches(t *testing.T) {
	var userHits, beerHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/rfid/"):
			userHits++
			fmt.Fprint(w, `{"nethz": "jdoe"}`)
		case strings.HasPrefix(r.URL.Path, "/beer/"):
			beerHits++
			fmt.Fprint(w, `{"beer": 1}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := NewAMIV(srv.URL, "key", "secret", time.Second, discardLogger())
	entitled, err := a.GetStatus(context.Background(), "abcdef")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !entitled {
		t.Fatal("expected positive beer balance to entitle")
	}

	if _, err := a.GetStatus(context.Background(), "abcdef"); err != nil {
		t.Fatalf("second GetStatus: %v", err)
	}
	if userHits != 1 {
		t.Fatalf("userHits = %d, want 1 (nethz id should be cached)", userHits)
	}
	if beerHits != 2 {
		t.Fatalf("beerHits = %d, want 2", beerHits)
	}
}

func TestAMIVReportDispensedUsesOffsetSlot(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/rfid/") {
			fmt.Fprint(w, `{"nethz": "jdoe"}`)
			return
		}
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	a := NewAMIV(srv.URL, "key", "secret", time.Second, discardLogger())
	if err := a.ReportDispensed(context.Background(), "abcdef", 3); err != nil {
		t.Fatalf("ReportDispensed: %v", err)
	}
	if gotPath != "/dispensed/jdoe/13" {
		t.Fatalf("path = %q, want slot offset by 10", gotPath)
	}
}

func TestVMPGetStatusAndReportDispensed(t *testing.T) {
	var gotDispenseQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status.php":
			fmt.Fprint(w, `{"allowed": true}`)
		case "/dispense.php":
			gotDispenseQuery = r.URL.RawQuery
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v := NewVMP(srv.URL+"/status.php", srv.URL+"/dispense.php", time.Second, discardLogger())
	entitled, err := v.GetStatus(context.Background(), "abcdef")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !entitled {
		t.Fatal("expected allowed=true to entitle")
	}

	if err := v.ReportDispensed(context.Background(), "abcdef", 5); err != nil {
		t.Fatalf("ReportDispensed: %v", err)
	}
	if gotDispenseQuery != "rfidnr=abcdef&slot_id=5" {
		t.Fatalf("query = %q", gotDispenseQuery)
	}
}
