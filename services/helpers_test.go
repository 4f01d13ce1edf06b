package services

import "time"

const testTimeout = 5 * time.Second
