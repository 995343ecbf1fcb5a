package utils

import (
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return "run-" + timestamp + "-" + uuid.New().String()[:8]
}
