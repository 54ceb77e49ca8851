package redis

import (
	"fmt"
)

func prefixedName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", prefix, key)
}

func itemsListKey(prefix, queueName string) string {
	return prefixedName(
		prefix,
		fmt.Sprintf("%s:items", queueName),
	)
}
