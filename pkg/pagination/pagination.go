// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// List endpoints are windowed with "limit" and "offset" query parameters.
// The resulting window is echoed back in the response envelope as [Meta].
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items returned if not specified.
	DefaultLimit = 10
	// MaxLimit is the upper bound for items per request.
	MaxLimit = 100
)

// Params holds the parsed limit and offset from a request's query string.
type Params struct {
	Limit  int
	Offset int
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// NewMeta constructs pagination metadata for a response holding count items.
func NewMeta(params Params, count int) Meta {
	return Meta{
		Limit:  params.Limit,
		Offset: params.Offset,
		Count:  count,
	}
}

// FromRequest parses "limit" and "offset" query parameters from an HTTP request.
//
// # Clamping
//
// A missing or non-positive limit falls back to [DefaultLimit]; anything above
// [MaxLimit] is clamped to it. Negative offsets become zero.
func FromRequest(r *http.Request) Params {
	limit := parseIntParam(r, "limit", DefaultLimit)
	offset := parseIntParam(r, "offset", 0)

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
