package events

// Topic constants for domain events emitted by the shop.
const (
	TopicTransactionCreated = "transaction.created"
	TopicReportClosed       = "report.closed"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{TopicTransactionCreated, TopicReportClosed}
}
