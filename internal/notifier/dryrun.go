package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

// DryRunNotifier prints what would be sent without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(ctx context.Context, batch *assembly.Batch) error {
	msg := Message(batch)
	fmt.Fprintf(n.out, "--- Message for %s ---\n", batch.Date)
	fmt.Fprintln(n.out, msg)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n", len([]rune(msg)))
	return nil
}
