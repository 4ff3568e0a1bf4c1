package kafka

// Topic definitions for Kafka event streaming
const (
	// TopicTradeClosed carries completed trade records from the execution side
	TopicTradeClosed = "trades.closed"
)
