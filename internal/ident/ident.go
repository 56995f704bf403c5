// Package ident generates block and record identifiers.
package ident

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	mu   sync.Mutex
	last int64
)

// NextID returns "<prefix>-<millis>-<random>". The millisecond component is
// forced to increase on every call in this process, so ids never collide even
// when generated within the same millisecond.
func NextID(prefix string) string {
	mu.Lock()
	now := time.Now().UnixMilli()
	if now <= last {
		now = last + 1
	}
	last = now
	mu.Unlock()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	if prefix == "" {
		return strconv.FormatInt(now, 10) + "-" + suffix
	}
	return prefix + "-" + strconv.FormatInt(now, 10) + "-" + suffix
}

// NewUUID returns a random UUID string for persisted records.
func NewUUID() string {
	return uuid.New().String()
}
