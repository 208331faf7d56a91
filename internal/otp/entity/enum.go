package entity

import "strings"

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelSMS     Channel = 1
	ChannelEmail   Channel = 2
)

func ChannelFromString(raw string) Channel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sms":
		return ChannelSMS
	case "email":
		return ChannelEmail
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelSMS:
		return "sms"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

// DeliveryMode tells whether a provider really dispatched a message or only logged it.
type DeliveryMode string

const (
	DeliveryModeLive DeliveryMode = "live"
	DeliveryModeLog  DeliveryMode = "log"
)

func (m DeliveryMode) String() string {
	return string(m)
}

// StoreBackend names the store currently serving requests.
type StoreBackend string

const (
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

func (b StoreBackend) String() string {
	return string(b)
}
