package orderbookv1

import (
	"testing"
)

func BenchmarkBook_SubmitRest(b *testing.B) {
	book := NewBook("AAPL", &seqIDs{}, NewExecutionQueue())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := int32(4000 + i%100)
		_, _ = book.Submit(limitIntent(SideBuy, 10, price, uint32(i)))
	}
}

func BenchmarkBook_SubmitCross(b *testing.B) {
	book := NewBook("AAPL", &seqIDs{}, NewExecutionQueue())
	queue := book.executions

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.Submit(limitIntent(SideSell, 10, 4000, 1))
		_, _ = book.Submit(limitIntent(SideBuy, 10, 4000, 2))
		for queue.Pop() != nil {
		}
	}
}

func BenchmarkBook_CancelMiddle(b *testing.B) {
	book := NewBook("AAPL", &seqIDs{}, NewExecutionQueue())

	ids := make([]uint64, 0, b.N)
	for i := 0; i < b.N; i++ {
		id, _ := book.Submit(limitIntent(SideBuy, 10, 4700, uint32(i)))
		ids = append(ids, id)
	}

	b.ResetTimer()
	for _, id := range ids {
		_ = book.Cancel(id)
	}
}
