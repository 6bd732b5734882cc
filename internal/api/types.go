package api

import (
	"io"
	"strings"
)

type StockQuery struct {
	Item string
}

type OrderRequest struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UploadRequest is one file posted as the multipart field "file".
type UploadRequest struct {
	FileName string
	Content  io.Reader
}

// ResponseFormat selects how an upload response body is read.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// ParseResponseFormat maps a config value to a ResponseFormat, defaulting to
// text.
func ParseResponseFormat(s string) ResponseFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
