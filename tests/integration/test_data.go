package integration

import (
	"fmt"
	"time"
)

// TestCredentials generates unique test account credentials using a timestamp
func TestCredentials(suffix string) (handle, password string) {
	ts := time.Now().UnixNano()
	handle = fmt.Sprintf("member-%d-%s", ts, suffix)
	password = "TestPassword123!"
	return
}
