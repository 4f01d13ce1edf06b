package shared

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sirupsen/logrus"
)

// NewScrapingHTTPClient creates an HTTP client with connection pooling and
// the timeout bounds every source fetch runs under
func NewScrapingHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,

			DisableKeepAlives: false,

			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,

			DisableCompression: false,
		},
	}
}

// NewSessionHTTPClient creates a scraping client that additionally carries
// session cookies between requests. The exchange API refuses data requests
// until a warm-up request against the host root has set its cookies.
func NewSessionHTTPClient(timeout time.Duration) *http.Client {
	client := NewScrapingHTTPClient(timeout)

	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New with nil options cannot fail today; if it ever does,
		// the client still works for sources that need no session
		logrus.WithError(err).Warn("Failed to create cookie jar, continuing without session cookies")
		return client
	}

	client.Jar = jar
	return client
}

// SetBrowserLikeHeaders configures HTTP request headers to mimic browser behavior
func SetBrowserLikeHeaders(request *http.Request, acceptHeader string) {
	request.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	request.Header.Set("Accept", acceptHeader)
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	request.Header.Set("Cache-Control", "no-cache")
	request.Header.Set("Connection", "keep-alive")
}

// DoRequest executes a single HTTP request and normalizes the failure modes.
// There is no retry: a failed fetch simply yields an empty result for this
// render pass, and the next render tries again.
func DoRequest(client *http.Client, request *http.Request) (*http.Response, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "http",
		"url":       request.URL.String(),
	})

	response, err := client.Do(request)
	if err != nil {
		logger.WithError(err).Debug("HTTP request failed")
		return nil, WrapError(err, ErrorCategoryNetwork, "REQUEST_FAILED", "http", request.URL.Host, true)
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close()
		logger.WithField("status_code", response.StatusCode).Debug("HTTP request returned non-200 status")
		return nil, NewServiceError(
			ErrorCategoryNetwork,
			"UNEXPECTED_STATUS",
			fmt.Sprintf("HTTP %d: %s", response.StatusCode, http.StatusText(response.StatusCode)),
			"http",
			request.URL.Host,
			response.StatusCode >= 500,
			nil,
		)
	}

	return response, nil
}
