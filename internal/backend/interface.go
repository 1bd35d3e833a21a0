package backend

import (
	"context"
	"time"

	"budget/internal/gateway"
)

// Gateway is the unified persistence contract: CRUD plus insights, served
// identically by both variants.
type Gateway interface {
	gateway.ExpenseLister
	gateway.ExpenseWriter
	gateway.InsightsReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the gateway instance and optional cleanup function
type Result struct {
	Gateway Gateway
	Cleanup CleanupFunc
}

// Factory creates gateways based on configuration
type Factory interface {
	// CreateGateway builds the backend selected by the config. The variant
	// is fixed for the life of the process; variants are never mixed.
	CreateGateway(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for gateway creation
type Config struct {
	Type Type

	// Local specific
	SQLiteDBPath string
	SlotName     string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote specific
	BaseURL string
	Timeout time.Duration
}

// Type represents the backend variant
type Type string

const (
	Local  Type = "local"
	Remote Type = "remote"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case Local, Remote:
		return true
	default:
		return false
	}
}
