package cache

import "strings"

const (
	GlobalKeyPrefix = "mcqbot"
)

// GenerateCacheKey builds "mcqbot:<service>:<object>:<id>[:<params joined by _>]".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// BankSummaryKey is the key of one user's cached bank summary.
func BankSummaryKey(ownerID string) string {
	return GenerateCacheKey("bank", "summary", ownerID)
}
