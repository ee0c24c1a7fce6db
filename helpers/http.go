package helpers

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"golang.org/x/net/html/charset"
)

// Browser identities presented to the rendering service
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}
)

// RandomUserAgent returns one of the known desktop browser user agents
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// RandomReferer returns one of the known search engine referers
func RandomReferer() string {
	return referers[rand.IntN(len(referers))]
}

// DecodeUTF8 converts a rendered body to UTF-8 using the Content-Type header
// and the document's own meta tags.
func DecodeUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return body, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}
	return buf.Bytes(), nil
}

// LooksLikeHTML reports whether a response body is an HTML document
func LooksLikeHTML(body []byte) bool {
	if len(body) < 50 {
		return false
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<!doctype") ||
		strings.Contains(lower, "<body")
}
