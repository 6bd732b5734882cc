package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/testutils"
	"github.com/dyike/DepotGo/internal/view"
)

type memJournal struct {
	mu      sync.Mutex
	entries []storage.Interaction
}

func (j *memJournal) Record(in storage.Interaction) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, in)
}

func (j *memJournal) all() []storage.Interaction {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]storage.Interaction(nil), j.entries...)
}

func newClient(backend *testutils.FakeBackend) *api.Client {
	return api.NewClient(api.Options{BaseURL: backend.URL()}, nil)
}

func TestTargetFor(t *testing.T) {
	cases := map[string]string{
		"Fuel":           "stock_fuel",
		"laser_crystals": "stock_laser_crystals",
		"Hull Plates":    "stock_hull_plates",
		"a b c":          "stock_a_b_c",
	}
	for item, want := range cases {
		if got := TargetFor(item); got != want {
			t.Fatalf("TargetFor(%q) = %q, want %q", item, got, want)
		}
	}
}

func TestPollAllRendersEveryTrackedItem(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()
	backend.SetStockReply("capacitors", testutils.Reply{Status: http.StatusInternalServerError, Body: "boom"})
	backend.SetStockReply("fuel", testutils.Reply{Hangup: true})

	page := view.NewPage()
	journal := &memJournal{}
	poller := NewStockPoller(newClient(backend), page, nil, journal)
	poller.PollAll(context.Background(), config.DefaultTrackedItems())

	want := map[string]string{
		view.IDStockRations:       "In stock: 40",
		view.IDStockLaserCrystals: "In stock: 12",
		view.IDStockDroidSilicon:  "In stock: 7",
		view.IDStockCapacitors:    "In stock: Unavailable",
		view.IDStockFuel:          "In stock: Unavailable",
	}
	for target, text := range want {
		if got := page.Text(target); got != text {
			t.Fatalf("%s = %q, want %q", target, got, text)
		}
	}
	if n := len(backend.RequestsTo(http.MethodGet, "/api/Order")); n != 5 {
		t.Fatalf("expected 5 stock requests, got %d", n)
	}
	if n := len(journal.all()); n != 5 {
		t.Fatalf("expected 5 journal entries, got %d", n)
	}
}

func TestStockUpdateNonNumericValues(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()
	backend.SetStockReply("rations", testutils.Reply{Body: `"plenty"`, ContentType: "application/json"})
	backend.SetStockReply("fuel", testutils.Reply{Body: "null", ContentType: "application/json"})

	page := view.NewPage()
	poller := NewStockPoller(newClient(backend), page, nil, nil)
	poller.Update(context.Background(), "rations", view.IDStockRations)
	poller.Update(context.Background(), "fuel", view.IDStockFuel)

	if got := page.Text(view.IDStockRations); got != "In stock: plenty" {
		t.Fatalf("string stock = %q", got)
	}
	if got := page.Text(view.IDStockFuel); got != "In stock: null" {
		t.Fatalf("null stock = %q", got)
	}
}

func TestSignupPasswordMismatchSendsNothing(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()

	page := view.NewPage()
	journal := &memJournal{}
	signup := NewSignupSubmitter(newClient(backend), page, nil, journal)

	err := signup.Submit(context.Background(), SignupForm{Username: "rey", Password: "a", PasswordConfirm: "b"})
	if api.KindOf(err) != api.KindPrecondition {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if len(backend.Requests()) != 0 {
		t.Fatalf("no request expected, got %d", len(backend.Requests()))
	}
	if alerts := page.Alerts(); len(alerts) != 1 || alerts[0] != "Passwords do not match." {
		t.Fatalf("unexpected alerts %v", alerts)
	}
	entries := journal.all()
	if len(entries) != 1 || entries[0].Outcome != storage.OutcomeRejected {
		t.Fatalf("unexpected journal %+v", entries)
	}
}

func TestSignupCreated(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()

	page := view.NewPage()
	journal := &memJournal{}
	signup := NewSignupSubmitter(newClient(backend), page, nil, journal)

	if err := signup.Submit(context.Background(), SignupForm{Username: "rey", Password: "bb8", PasswordConfirm: "bb8"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if alerts := page.Alerts(); len(alerts) != 1 || alerts[0] != "User created successfully!" {
		t.Fatalf("unexpected alerts %v", alerts)
	}
	for _, e := range journal.all() {
		if strings.Contains(e.Detail, "bb8") || strings.Contains(e.Subject, "bb8") {
			t.Fatalf("password leaked into journal: %+v", e)
		}
	}
}

func TestSignupOtherStatusAlertsBody(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError} {
		backend := testutils.NewFakeBackend()
		backend.SetAccountReply(testutils.Reply{Status: status, Body: "username taken"})

		page := view.NewPage()
		signup := NewSignupSubmitter(newClient(backend), page, nil, nil)
		err := signup.Submit(context.Background(), SignupForm{Username: "rey", Password: "x", PasswordConfirm: "x"})
		backend.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if alerts := page.Alerts(); len(alerts) != 1 || alerts[0] != "Error creating user: username taken" {
			t.Fatalf("status %d: unexpected alerts %v", status, alerts)
		}
	}
}

func TestSignupTransportFailureAlertsEmptyBody(t *testing.T) {
	backend := testutils.NewFakeBackend()
	backend.SetAccountReply(testutils.Reply{Hangup: true})
	defer backend.Close()

	page := view.NewPage()
	signup := NewSignupSubmitter(newClient(backend), page, nil, nil)
	err := signup.Submit(context.Background(), SignupForm{Username: "rey", Password: "x", PasswordConfirm: "x"})
	if api.KindOf(err) != api.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if alerts := page.Alerts(); len(alerts) != 1 || alerts[0] != "Error creating user: " {
		t.Fatalf("unexpected alerts %v", alerts)
	}
}

func TestOrderSuccessRefreshesStock(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()

	client := newClient(backend)
	page := view.NewPage()
	poller := NewStockPoller(client, page, nil, nil)
	orders := NewOrderSubmitter(client, poller, nil, nil)

	if err := orders.Submit(context.Background(), "Fuel", 3); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	gets := backend.RequestsTo(http.MethodGet, "/api/Order")
	if len(gets) != 1 || gets[0].Query.Get("item") != "fuel" {
		t.Fatalf("expected one follow-up fetch for fuel, got %+v", gets)
	}
	if got := page.Text(view.IDStockFuel); got != "In stock: 87" {
		t.Fatalf("stock_fuel = %q", got)
	}
}

func TestOrderFailureIsNotRendered(t *testing.T) {
	backend := testutils.NewFakeBackend()
	backend.SetOrderReply(testutils.Reply{Status: http.StatusBadRequest, Body: "Invalid quantity provided"})
	defer backend.Close()

	client := newClient(backend)
	page := view.NewPage()
	journal := &memJournal{}
	orders := NewOrderSubmitter(client, NewStockPoller(client, page, nil, nil), nil, journal)

	err := orders.Submit(context.Background(), "Fuel", 3)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 error, got %v", err)
	}
	if len(page.Elements()) != 0 || len(page.Alerts()) != 0 {
		t.Fatalf("failed order must not render anything")
	}
	if len(backend.RequestsTo(http.MethodGet, "/api/Order")) != 0 {
		t.Fatalf("failed order must not refresh stock")
	}
	if entries := journal.all(); len(entries) != 1 || entries[0].Outcome != storage.OutcomeFailed {
		t.Fatalf("unexpected journal %+v", entries)
	}
}

func TestUploadRendersDownloadLink(t *testing.T) {
	backend := testutils.NewFakeBackend()
	backend.SetUploadReply(testutils.Reply{Body: "https://example.com/f/abc"})
	defer backend.Close()

	page := view.NewPage()
	var updates []string
	page.OnUpdate(func(u view.Update) {
		if u.Kind == view.UpdateElement {
			updates = append(updates, u.Element.Text)
		}
	})

	upload := NewUploadSubmitter(newClient(backend), page, UploadOptions{ShowProgressMessage: true}, nil, nil)
	err := upload.Submit(context.Background(), api.UploadRequest{FileName: "report.json", Content: strings.NewReader("{}")})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(updates) != 2 || updates[0] != view.ProgressMessage() {
		t.Fatalf("expected progress message before link, got %v", updates)
	}

	out, err := view.RenderHTML(page)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := doc.Find("#upload-instruct a")
	if href, _ := a.Attr("href"); href != "https://example.com/f/abc" {
		t.Fatalf("href = %q", href)
	}
	if a.Text() != "Download Link" {
		t.Fatalf("anchor text = %q", a.Text())
	}
	if !strings.HasPrefix(doc.Find("#upload-instruct").Text(), "Access your uploaded file here: ") {
		t.Fatalf("missing link prefix: %q", doc.Find("#upload-instruct").Text())
	}
}

func TestUploadWithoutProgressMessage(t *testing.T) {
	backend := testutils.NewFakeBackend()
	defer backend.Close()

	page := view.NewPage()
	var texts []string
	page.OnUpdate(func(u view.Update) { texts = append(texts, u.Element.Text) })

	upload := NewUploadSubmitter(newClient(backend), page, UploadOptions{}, nil, nil)
	if err := upload.Submit(context.Background(), api.UploadRequest{FileName: "r.json", Content: strings.NewReader("{}")}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, text := range texts {
		if text == view.ProgressMessage() {
			t.Fatalf("progress message shown while disabled")
		}
	}
}

func TestUploadFailureKeepsFormVisible(t *testing.T) {
	replies := []testutils.Reply{
		{Status: http.StatusInternalServerError, Body: "Failed to process the upload and generate SAS token."},
		{Status: http.StatusForbidden},
		{Hangup: true},
	}
	for _, reply := range replies {
		backend := testutils.NewFakeBackend()
		backend.SetUploadReply(reply)

		page := view.NewPage()
		upload := NewUploadSubmitter(newClient(backend), page, UploadOptions{ShowProgressMessage: true}, nil, nil)
		err := upload.Submit(context.Background(), api.UploadRequest{FileName: "r.json", Content: strings.NewReader("{}")})
		backend.Close()

		if err == nil {
			t.Fatalf("reply %+v: expected error", reply)
		}
		if alerts := page.Alerts(); len(alerts) != 1 || alerts[0] != "Error uploading file." {
			t.Fatalf("reply %+v: unexpected alerts %v", reply, alerts)
		}
		if e, ok := page.Element(view.IDUploadForm); !ok || e.Hidden {
			t.Fatalf("reply %+v: upload form should stay visible", reply)
		}
		if e, _ := page.Element(view.IDUploadInstruct); e.Link != nil {
			t.Fatalf("reply %+v: no link expected", reply)
		}
	}
}

func TestUploadJSONResponseFormat(t *testing.T) {
	backend := testutils.NewFakeBackend()
	backend.SetUploadReply(testutils.Reply{Body: `{"url":"https://example.com/f/json"}`, ContentType: "application/json"})
	defer backend.Close()

	page := view.NewPage()
	opts := UploadOptionsFromConfig(config.UploadConfig{ResponseFormat: config.ResponseFormatJSON})
	upload := NewUploadSubmitter(newClient(backend), page, opts, nil, nil)
	if err := upload.Submit(context.Background(), api.UploadRequest{FileName: "r.json", Content: strings.NewReader("{}")}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if e, _ := page.Element(view.IDUploadInstruct); e.Link == nil || e.Link.Href != "https://example.com/f/json" {
		t.Fatalf("unexpected element %+v", e)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte(`{"hull":"ok"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	req, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if req.FileName != "report.json" {
		t.Fatalf("FileName = %q", req.FileName)
	}

	backend := testutils.NewFakeBackend()
	defer backend.Close()
	page := view.NewPage()
	journal := &memJournal{}
	upload := NewUploadSubmitter(newClient(backend), page, UploadOptions{}, nil, journal)
	if err := upload.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	recs := backend.RequestsTo(http.MethodPost, "/api/FileUpload")
	if len(recs) != 1 || string(recs[0].FileContent) != `{"hull":"ok"}` {
		t.Fatalf("unexpected upload %+v", recs)
	}
	for _, e := range journal.all() {
		if strings.Contains(e.Detail, "hull") {
			t.Fatalf("file content leaked into journal: %+v", e)
		}
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
