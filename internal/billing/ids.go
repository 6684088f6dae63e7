package billing

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// IDGenerator issues identifiers for new transactions.
type IDGenerator interface {
	TransactionID() string
	CustomerID() string
}

// SnowflakeIDs issues time-ordered transaction ids and random customer snapshot ids.
type SnowflakeIDs struct {
	node *snowflake.Node
}

// NewSnowflakeIDs constructs a generator for the given node number (0-1023).
func NewSnowflakeIDs(node int64) (*SnowflakeIDs, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("billing: snowflake node: %w", err)
	}
	return &SnowflakeIDs{node: n}, nil
}

// TransactionID implements IDGenerator.
func (g *SnowflakeIDs) TransactionID() string {
	return "txn_" + g.node.Generate().String()
}

// CustomerID implements IDGenerator.
func (g *SnowflakeIDs) CustomerID() string {
	return "cust_" + uuid.NewString()
}
