package executionpublisherv1

import "context"

// ExecutionPublisher defines the interface for publishing execution reports.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=executionpublisherv1_mock
type ExecutionPublisher interface {
	// PublishExecutionReport publishes one execution report downstream.
	PublishExecutionReport(ctx context.Context, report *ExecutionReport) error
}
