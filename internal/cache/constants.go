package cache

import (
	"fmt"
	"time"
)

// key names definition
const (
	RowAvailableKey = "seatrow:%d:available" // JSON array of available seat numbers, '%d' is row id
	SettingKey      = "setting:%s"           // cached settings value, '%s' is the setting key
)

// availability entries are short lived, listing reads only need to
// eventually reflect committed changes
const (
	RowAvailableTTL = 30 * time.Second
	SettingTTL      = 5 * time.Minute
)

func MakeRowAvailableKey(rowID uint) string {
	return fmt.Sprintf(RowAvailableKey, rowID)
}

func MakeSettingKey(key string) string {
	return fmt.Sprintf(SettingKey, key)
}
