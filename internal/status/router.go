// Package status decides, from whatever context a status-check page was
// opened with, which service and code to show and where to navigate next.
package status

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/polsek-portal/api/internal/enum"
	"github.com/polsek-portal/api/internal/tracking"
)

// Paths of the status-check pages.
const (
	EntryPath   = "/cek-status"
	ResultsPath = "/cek-status/hasil"
)

// CodeStore is the session code memory used by the router.
// Satisfied by *codestore.Store.
type CodeStore interface {
	Remember(ctx context.Context, kind tracking.Kind, code string)
	Recall(ctx context.Context, kind tracking.Kind) string
}

// NavState is the in-memory navigation state a page may pass along.
type NavState struct {
	From string `json:"from"`
	Code string `json:"code"`
}

// Entry is the resolved starting point of a status check.
type Entry struct {
	Kind       tracking.Kind `json:"kind"`
	Hint       string        `json:"hint"`
	Code       string        `json:"code"`
	CanProceed bool          `json:"can_proceed"`
}

// Outcome is the result of submitting a code.
type Outcome struct {
	Kind        tracking.Kind `json:"kind"`
	Code        string        `json:"code"`
	OK          bool          `json:"ok"`
	Message     string        `json:"message,omitempty"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}

// ResolveHint picks the service hint: navigation state, then the "from"
// query parameter, then the legacy "jenis" parameter, then the fallback.
func ResolveHint(nav NavState, query url.Values) string {
	return firstNonEmpty(nav.From, query.Get("from"), query.Get("jenis"), enum.HintFallback)
}

// ResolveEntry determines the kind, pre-filled code and whether the user can
// go straight to the results view.
func ResolveEntry(ctx context.Context, store CodeStore, nav NavState, query url.Values) Entry {
	hint := ResolveHint(nav, query)
	kind := tracking.Classify(hint)

	code := firstNonEmpty(nav.Code, query.Get("code"))
	if code == "" && store != nil {
		code = store.Recall(ctx, kind)
	}

	return Entry{
		Kind:       kind,
		Hint:       hint,
		Code:       code,
		CanProceed: code != "" && tracking.IsValid(kind, code),
	}
}

// Submit validates a code typed under hint. A valid code is remembered and
// yields the results URL; an invalid one yields a message and leaves the
// store untouched.
func Submit(ctx context.Context, store CodeStore, hint, code string) Outcome {
	hint = firstNonEmpty(hint, enum.HintFallback)
	kind := tracking.Classify(hint)
	code = strings.TrimSpace(code)

	if !tracking.IsValid(kind, code) {
		return Outcome{Kind: kind, Code: code, Message: InvalidCodeMessage(kind, code)}
	}

	if store != nil {
		store.Remember(ctx, kind, code)
	}
	return Outcome{
		Kind:        kind,
		Code:        code,
		OK:          true,
		RedirectURL: ResultsURL(code, hint),
	}
}

// InvalidCodeMessage is the inline error shown for a rejected code.
func InvalidCodeMessage(kind tracking.Kind, code string) string {
	if strings.TrimSpace(code) == "" {
		return "Kode wajib diisi."
	}
	if ex := tracking.Example(kind); ex != "" {
		return fmt.Sprintf("Format kode %s tidak valid. Contoh: %s", kind.Label(), ex)
	}
	return "Kode tidak valid. Masukkan minimal 4 karakter."
}

// ResultsURL builds the results view URL. It carries the hint in both "from"
// and "jenis" so a reloaded or shared link resolves the same way.
func ResultsURL(code, hint string) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("from", hint)
	q.Set("jenis", hint)
	return ResultsPath + "?" + q.Encode()
}

// EntryURL builds the status-check entry URL a submission page redirects to.
func EntryURL(code, hint string) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("from", hint)
	return EntryPath + "?" + q.Encode()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
