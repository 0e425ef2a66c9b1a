package net

import (
	"net/http"
	"time"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
	clientAgent      = "stunting/1.0 (+reference-fetch)"
)

var (
	reqTransport = &http.Transport{
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       timeoutInSeconds * time.Second,
		DisableCompression:    true,
		DisableKeepAlives:     false,
		ResponseHeaderTimeout: time.Duration(timeoutInSeconds) * time.Second,
	}
)

// GetHTTPClient returns the client used for downloads.
func GetHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   time.Duration(timeoutInSeconds) * time.Second,
		Transport: reqTransport,
	}
}
