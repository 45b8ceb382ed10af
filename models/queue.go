package models

import "strings"

// QueueKeyPrefix is shared by every matchmaking queue key so the scheduler can
// enumerate queues with a single pattern scan.
const QueueKeyPrefix = "queue:"

// WaitingUser is one entry in a matchmaking queue. Entries are immutable once
// enqueued; they are JSON-encoded into the backing Redis list.
type WaitingUser struct {
	UserID   string `json:"user_id"`
	Domain   string `json:"domain"`
	RoomType string `json:"room_type,omitempty"`
}

// QueueKey builds the Redis key for a (domain, room_type) queue. The room type
// is optional; a domain-only queue uses the short form "queue:<domain>".
// Domain and room type names must not contain ':'.
func QueueKey(domain, roomType string) string {
	if roomType == "" {
		return QueueKeyPrefix + domain
	}
	return QueueKeyPrefix + domain + ":" + roomType
}

// ParseQueueKey splits "queue:<domain>" or "queue:<domain>:<room_type>" back
// into its parts. ok is false for keys that do not match the queue naming
// pattern.
func ParseQueueKey(key string) (domain, roomType string, ok bool) {
	rest, found := strings.CutPrefix(key, QueueKeyPrefix)
	if !found || rest == "" {
		return "", "", false
	}
	parts := strings.SplitN(rest, ":", 2)
	domain = parts[0]
	if domain == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		roomType = parts[1]
	}
	return domain, roomType, true
}
