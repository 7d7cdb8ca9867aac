package main

import "strings"

//go:generate templ generate

// acceptList turns ["png", "jpg"] into ".png,.jpg" for the file input.
func acceptList(exts []string) string {
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, "."+strings.TrimPrefix(strings.ToLower(ext), "."))
	}
	return strings.Join(parts, ",")
}
