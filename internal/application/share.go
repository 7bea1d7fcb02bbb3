package application

import (
	"net/url"
	"strings"
)

const qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

type ShareLink struct {
	URL       string `json:"url"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// NewShareLink derives a shareable link for deviceID and the URL of a
// 200x200 QR image encoding it. No network access is involved.
func NewShareLink(baseURL, deviceID string) ShareLink {
	link := strings.TrimSuffix(baseURL, "/") + "/#/device/" + url.PathEscape(deviceID)

	q := url.Values{}
	q.Set("size", "200x200")
	q.Set("data", link)

	return ShareLink{
		URL:       link,
		QRCodeURL: qrCodeEndpoint + "?" + q.Encode(),
	}
}
