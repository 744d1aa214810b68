package notifier

import (
	"context"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/kakao"
)

// Notifier defines the interface for publishing a day's schedule
type Notifier interface {
	// Notify publishes the assemblies in batch
	Notify(ctx context.Context, batch *assembly.Batch) error
}

// Message renders the text sent for a batch, the same summary the chatbot answers with
func Message(batch *assembly.Batch) string {
	return kakao.FormatToday(batch)
}
