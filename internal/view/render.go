package view

const (
	unavailable      = "Unavailable"
	downloadLinkText = "Download Link"
	uploadLinkPrefix = "Access your uploaded file here: "
)

// StockText is the stock board line for a fetched value, or the
// placeholder when the fetch failed.
func StockText(value string, ok bool) string {
	if !ok {
		return "In stock: " + unavailable
	}
	return "In stock: " + value
}

// ProgressMessage is shown while an upload is in flight.
func ProgressMessage() string {
	return "Report received. We are generating your link..."
}

// UploadLinkPrefix precedes the download link after a successful upload.
func UploadLinkPrefix() string {
	return uploadLinkPrefix
}

func UploadLink(url string) Link {
	return Link{Href: url, Text: downloadLinkText}
}

func UploadFailure() string {
	return "Error uploading file."
}

func PasswordMismatch() string {
	return "Passwords do not match."
}

func SignupSuccess() string {
	return "User created successfully!"
}

func SignupFailure(body string) string {
	return "Error creating user: " + body
}
