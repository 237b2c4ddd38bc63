package cache

import "fmt"

func JobStageKey(jobID string) string {
	return fmt.Sprintf("job:%s:embeddings", jobID)
}

func RateLimitKey(clientKey string) string {
	return fmt.Sprintf("ratelimit:%s", clientKey)
}
