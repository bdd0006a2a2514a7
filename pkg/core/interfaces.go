package core

import (
	"context"
)

// Experiment coordinates the running of experiments
type Experiment interface {
	// Run executes the experiment according to configuration
	Run(ctx context.Context) error
	// GetStatus returns current experiment status
	GetStatus() ExperimentStatus
}
