package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/tracking"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/submissions/permit" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"nama":"Budi"}` {
			t.Errorf("body: got %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"code":"IZN-2026-4GZ8QM","status":"DITERIMA"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL+"/", time.Second)
	receipt, err := c.Submit(context.Background(), tracking.KindPermit, json.RawMessage(`{"nama":"Budi"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.Code != "IZN-2026-4GZ8QM" {
		t.Errorf("code: got %q", receipt.Code)
	}
}

func TestSubmit_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"nama wajib diisi"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second)
	_, err := c.Submit(context.Background(), tracking.KindPermit, json.RawMessage(`{}`))

	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "nama wajib diisi" {
		t.Errorf("api error: got %+v", apiErr)
	}
}

func TestSubmit_MissingCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"DITERIMA"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second)
	_, err := c.Submit(context.Background(), tracking.KindLostItem, json.RawMessage(`{}`))
	if !errors.Is(err, backend.ErrMissingCode) {
		t.Fatalf("expected ErrMissingCode, got %v", err)
	}
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := backend.NewClient(url, time.Second)
	if _, err := c.Submit(context.Background(), tracking.KindPermit, json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for unreachable backend")
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/submissions/LPR-2026-0142":
			w.Write([]byte(`{"code":"LPR-2026-0142","service":"online-incident-report","status":"DIPROSES","note":"sedang diverifikasi"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second)

	rec, err := c.Status(context.Background(), "LPR-2026-0142")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if rec.Status != "DIPROSES" || rec.Note != "sedang diverifikasi" {
		t.Errorf("record: got %+v", rec)
	}

	_, err = c.Status(context.Background(), "LPR-2026-9999")
	if !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
