// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds generic helpers for optional (nullable) fields.
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}
