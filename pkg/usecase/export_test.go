package usecase

import "testing"

func SetMaxExtractSize(t *testing.T, n int64) {
	prev := maxExtractSize
	maxExtractSize = n
	t.Cleanup(func() { maxExtractSize = prev })
}
