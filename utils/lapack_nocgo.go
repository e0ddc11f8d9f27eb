//go:build !cgo || !netlib
// +build !cgo !netlib

package utils

const NetlibBLAS = false
