// Package testutils provides an in-memory depot backend for tests.
package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Reply overrides what an endpoint answers. Hangup drops the connection
// without a response.
type Reply struct {
	Status      int
	Body        string
	ContentType string
	Hangup      bool
}

// Recorded is one request the backend received.
type Recorded struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	FileName    string
	FileContent []byte
}

// FakeBackend behaves like the depot API: stock lookups and orders against
// an inventory, account creation and report uploads. Each endpoint can be
// overridden with a fixed Reply.
type FakeBackend struct {
	server *httptest.Server

	mu          sync.Mutex
	inventory   map[string]int
	stock       map[string]Reply
	order       *Reply
	account     *Reply
	upload      *Reply
	codeParam   string
	code        string
	requests    []Recorded
	downloadURL string
}

// NewFakeBackend starts a backend stocked with the default depot items.
func NewFakeBackend() *FakeBackend {
	gin.SetMode(gin.TestMode)

	f := &FakeBackend{
		inventory: map[string]int{
			"rations":        40,
			"laser_crystals": 12,
			"droid_silicon":  7,
			"capacitors":     25,
			"fuel":           90,
		},
		stock:       make(map[string]Reply),
		downloadURL: "https://depot.blob.example/reports",
	}

	r := gin.New()
	r.Use(f.record, f.authorize)
	r.GET("/api/Order", f.getStock)
	r.POST("/api/Order", f.postOrder)
	r.POST("/api/Account", f.postAccount)
	r.POST("/api/FileUpload", f.postUpload)
	r.POST("/api/fileupload", f.postUpload)

	f.server = httptest.NewServer(r)
	return f
}

func (f *FakeBackend) URL() string {
	return f.server.URL
}

func (f *FakeBackend) Close() {
	f.server.Close()
}

// RequireAccessCode makes every endpoint answer 401 unless the query
// parameter param equals code.
func (f *FakeBackend) RequireAccessCode(param, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codeParam = param
	f.code = code
}

func (f *FakeBackend) SetInventory(item string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory[strings.ToLower(item)] = qty
}

func (f *FakeBackend) Inventory(item string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inventory[strings.ToLower(item)]
}

func (f *FakeBackend) SetStockReply(item string, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[strings.ToLower(item)] = reply
}

func (f *FakeBackend) SetOrderReply(reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = &reply
}

func (f *FakeBackend) SetAccountReply(reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account = &reply
}

func (f *FakeBackend) SetUploadReply(reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upload = &reply
}

// Requests returns every request received so far.
func (f *FakeBackend) Requests() []Recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Recorded, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo filters Requests by method and path.
func (f *FakeBackend) RequestsTo(method, path string) []Recorded {
	var out []Recorded
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeBackend) record(c *gin.Context) {
	rec := Recorded{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if fh, err := c.FormFile("file"); err == nil {
			rec.FileName = fh.Filename
			if src, err := fh.Open(); err == nil {
				rec.FileContent, _ = io.ReadAll(src)
				src.Close()
			}
		}
	} else if c.Request.Body != nil {
		body, _ := io.ReadAll(c.Request.Body)
		rec.Body = body
		c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	c.Next()
}

func (f *FakeBackend) authorize(c *gin.Context) {
	f.mu.Lock()
	param, code := f.codeParam, f.code
	f.mu.Unlock()
	if param != "" && c.Query(param) != code {
		c.String(http.StatusUnauthorized, "Unauthorized")
		c.Abort()
		return
	}
	c.Next()
}

func (f *FakeBackend) getStock(c *gin.Context) {
	item := c.Query("item")

	f.mu.Lock()
	reply, overridden := f.stock[strings.ToLower(item)]
	qty, found := f.inventory[strings.ToLower(item)]
	f.mu.Unlock()

	if overridden {
		f.respond(c, reply)
		return
	}
	if !found {
		c.String(http.StatusNotFound, "Item %s not found", item)
		return
	}
	c.String(http.StatusOK, "%d", qty)
}

func (f *FakeBackend) postOrder(c *gin.Context) {
	if reply := f.override(&f.order); reply != nil {
		f.respond(c, *reply)
		return
	}

	var body struct {
		Item     string          `json:"item"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}
	if body.Item == "" || len(body.Quantity) == 0 || string(body.Quantity) == "null" {
		c.String(http.StatusBadRequest, "Please specify 'item' and 'quantity' in the JSON body of the request")
		return
	}
	qty, err := strconv.Atoi(strings.Trim(string(body.Quantity), `"`))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid quantity provided")
		return
	}

	f.mu.Lock()
	key := strings.ToLower(body.Item)
	current, found := f.inventory[key]
	if found {
		f.inventory[key] = current - qty
	}
	f.mu.Unlock()

	if !found {
		c.String(http.StatusOK, "Failed to place order for %s", body.Item)
		return
	}
	c.String(http.StatusOK, "Order for %s placed successfully", body.Item)
}

func (f *FakeBackend) postAccount(c *gin.Context) {
	if reply := f.override(&f.account); reply != nil {
		f.respond(c, *reply)
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}
	if body.Username == "" || body.Password == "" {
		c.String(http.StatusBadRequest, "Please pass both username and password in the request body")
		return
	}
	c.String(http.StatusCreated, "User %s created successfully!", body.Username)
}

func (f *FakeBackend) postUpload(c *gin.Context) {
	if reply := f.override(&f.upload); reply != nil {
		f.respond(c, *reply)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to process the upload and generate SAS token.")
		return
	}
	c.String(http.StatusOK, "%s/%s?sp=r&sig=fake", f.downloadURL, fh.Filename)
}

func (f *FakeBackend) override(slot **Reply) *Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *slot
}

func (f *FakeBackend) respond(c *gin.Context, reply Reply) {
	if reply.Hangup {
		conn, _, err := c.Writer.Hijack()
		if err == nil {
			conn.Close()
		}
		c.Abort()
		return
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := reply.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(status, contentType, []byte(reply.Body))
}
