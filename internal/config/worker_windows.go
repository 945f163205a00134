//go:build windows

package config

const workerBinaryName = "store-worker.exe"
