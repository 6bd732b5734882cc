// Package api is the HTTP client for the depot's REST endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/logging"
)

const userAgent = "DepotGo/1.0"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options configures a Client. Zero paths fall back to the depot defaults.
type Options struct {
	BaseURL         string
	AccessCode      string
	AccessCodeParam string

	OrderPath   string
	AccountPath string
	UploadPath  string

	// Timeout bounds each request. Zero leaves requests unbounded.
	Timeout time.Duration
	Debug   bool
}

// OptionsFromConfig maps the resolved configuration onto client options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BaseURL:         cfg.Endpoint.BaseURL,
		AccessCode:      cfg.Endpoint.AccessCode,
		AccessCodeParam: cfg.Endpoint.AccessCodeParam,
		OrderPath:       cfg.OrderPath,
		AccountPath:     cfg.AccountPath,
		UploadPath:      cfg.UploadPath,
		Timeout:         cfg.RequestTimeout,
		Debug:           cfg.Debug,
	}
}

// Client talks to one depot deployment. It is safe for concurrent use.
type Client struct {
	client *resty.Client
	opts   Options
	logger *zap.Logger
}

// NewClient creates a new depot client
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.OrderPath == "" {
		opts.OrderPath = "/api/Order"
	}
	if opts.AccountPath == "" {
		opts.AccountPath = "/api/Account"
	}
	if opts.UploadPath == "" {
		opts.UploadPath = "/api/FileUpload"
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader("User-Agent", userAgent)
	client.SetLogger(logger.Sugar())
	client.SetDebug(opts.Debug)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.AccessCode != "" {
		param := opts.AccessCodeParam
		if param == "" {
			param = "code"
		}
		client.SetQueryParam(param, opts.AccessCode)
	}
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	return &Client{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// FetchStock asks for the current stock level of an item. Any body that is
// valid JSON is accepted regardless of status, so a 404 text reply surfaces
// as KindDecode.
func (c *Client) FetchStock(ctx context.Context, q StockQuery) (StockLevel, error) {
	const op = "fetch stock"

	resp, err := c.request(ctx).
		SetQueryParam("item", q.Item).
		Get(c.opts.OrderPath)
	if err != nil {
		return StockLevel{}, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	c.logger.Debug("stock response",
		zap.String("item", q.Item),
		zap.Int("status", resp.StatusCode()),
		zap.String("request_id", requestID(resp)))

	level, err := ParseStockLevel(resp.Body())
	if err != nil {
		return StockLevel{}, &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode(), Body: resp.String(), Err: err}
	}
	return level, nil
}

// PlaceOrder posts an order and returns the server's text acknowledgment.
func (c *Client) PlaceOrder(ctx context.Context, order OrderRequest) (string, error) {
	const op = "place order"

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(order).
		Post(c.opts.OrderPath)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp.String(), nil
}

// CreateAccount registers a user. Only 201 Created counts as success.
func (c *Client) CreateAccount(ctx context.Context, signup SignupRequest) (string, error) {
	const op = "create account"

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json;charset=UTF-8").
		SetBody(signup).
		Post(c.opts.AccountPath)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp.String(), nil
}

// Upload posts a file as multipart form data and returns the download URL
// from the response.
func (c *Client) Upload(ctx context.Context, upload UploadRequest, format ResponseFormat) (string, error) {
	const op = "upload"

	if upload.Content == nil {
		return "", Precondition(op, "no file selected")
	}

	resp, err := c.request(ctx).
		SetFileReader("file", upload.FileName, upload.Content).
		Post(c.opts.UploadPath)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode(), Body: resp.String()}
	}

	link, err := parseUploadResponse(resp.Body(), format)
	if err != nil {
		return "", &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode(), Body: resp.String(), Err: err}
	}
	return link, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.client.R().SetContext(ctx)
}

func requestID(resp *resty.Response) string {
	if resp == nil || resp.Request == nil {
		return ""
	}
	return resp.Request.Header.Get(RequestIDHeader)
}

type uploadReceipt struct {
	URL  string `json:"url"`
	Link string `json:"link"`
}

func parseUploadResponse(body []byte, format ResponseFormat) (string, error) {
	if format != FormatJSON {
		return strings.TrimSpace(string(body)), nil
	}

	var link string
	if err := json.Unmarshal(body, &link); err == nil {
		if link = strings.TrimSpace(link); link != "" {
			return link, nil
		}
		return "", fmt.Errorf("empty link in upload response")
	}

	var receipt uploadReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return "", fmt.Errorf("parse upload json: %w", err)
	}
	switch {
	case strings.TrimSpace(receipt.URL) != "":
		return strings.TrimSpace(receipt.URL), nil
	case strings.TrimSpace(receipt.Link) != "":
		return strings.TrimSpace(receipt.Link), nil
	default:
		return "", fmt.Errorf("upload response has no url")
	}
}
