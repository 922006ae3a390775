// Package instance names the running worker process in logs and lock values.
package instance

import (
	"fmt"
	"os"
)

const envWorkerID = "AVOLEDGER_WORKER_ID"

// ID returns AVOLEDGER_WORKER_ID, falling back to hostname-pid.
func ID() string {
	if id := os.Getenv(envWorkerID); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
