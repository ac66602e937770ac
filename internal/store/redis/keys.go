package redis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// KeyPrefixUser is the prefix for user record keys
	KeyPrefixUser = "voicelist:users:"
	// tasksSuffix and orderSuffix hang the task collection off a user record
	tasksSuffix = ":tasks"
	orderSuffix = ":tasks:order"
)

// userNamespace seeds the name-based UUIDs used as record keys.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("voicelist"))

// RecordKey derives the stable record key for a platform user id.
func RecordKey(userID string) string {
	return uuid.NewSHA1(userNamespace, []byte("voicelist:"+userID)).String()
}

// UserKey returns the Redis key of the user hash
func UserKey(key string) string {
	return KeyPrefixUser + key
}

// TasksKey returns the Redis key of the task id -> JSON hash
func TasksKey(key string) string {
	return KeyPrefixUser + key + tasksSuffix
}

// TaskOrderKey returns the Redis key of the insertion-ordered task id set
func TaskOrderKey(key string) string {
	return KeyPrefixUser + key + orderSuffix
}

// ExtractRecordKey extracts the record key from a user hash key.
func ExtractRecordKey(redisKey string) (string, error) {
	if len(redisKey) <= len(KeyPrefixUser) || !strings.HasPrefix(redisKey, KeyPrefixUser) {
		return "", fmt.Errorf("invalid user key: %s", redisKey)
	}
	key := redisKey[len(KeyPrefixUser):]
	if strings.Contains(key, ":") {
		return "", fmt.Errorf("not a user hash key: %s", redisKey)
	}
	return key, nil
}
