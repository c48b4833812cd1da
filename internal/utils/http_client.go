package utils

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/GodwinAdu/med-pro-sub001/pkg/logger"
)

// LoggingTransport implements http.RoundTripper and logs requests and responses
type LoggingTransport struct {
	Transport http.RoundTripper
}

// RoundTrip executes a single HTTP transaction and logs the request and response
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := transport.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		if logger.Log != nil {
			logger.Log.Warn("outbound request failed",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Duration("duration", duration),
				zap.Error(err))
		}
		return nil, err
	}

	// Buffer the response body so it can be logged and still read downstream.
	respBodyLog := "empty"
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Restore body
		if len(bodyBytes) > 0 {
			if len(bodyBytes) > 2000 {
				respBodyLog = string(bodyBytes[:2000]) + "...(truncated)"
			} else {
				respBodyLog = string(bodyBytes)
			}
		}
	}

	if logger.Log != nil {
		logger.Log.Debug("outbound request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.String("status", resp.Status),
			zap.Duration("duration", duration),
			zap.String("response", respBodyLog))
	}

	return resp, nil
}

// NewHTTPClient returns a new http.Client with logging enabled
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &LoggingTransport{
			Transport: http.DefaultTransport,
		},
	}
}
