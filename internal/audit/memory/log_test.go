package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

func TestAppendAndRecords(t *testing.T) {
	log := NewLog()

	records := []models.MutationRecord{
		{ID: "r1", CorrelationID: "c1", Kind: models.MutationTransferOut, Amount: decimal.NewFromInt(30)},
		{ID: "r2", CorrelationID: "c1", Kind: models.MutationTransferIn, Amount: decimal.NewFromInt(30)},
		{ID: "r3", CorrelationID: "c2", Kind: models.MutationDeposit, Amount: decimal.NewFromInt(5)},
	}
	for _, record := range records {
		if err := log.Append(context.Background(), record); err != nil {
			t.Fatalf("Append(%s) error = %v", record.ID, err)
		}
	}

	if got := log.Records(); len(got) != 3 {
		t.Errorf("Records() = %d entries, want 3", len(got))
	}
	if got := log.ByCorrelation("c1"); len(got) != 2 {
		t.Errorf("ByCorrelation(c1) = %d entries, want 2", len(got))
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	log := NewLog()
	if err := log.Append(context.Background(), models.MutationRecord{ID: "r1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := log.Records()
	got[0].ID = "tampered"

	if fresh := log.Records(); fresh[0].ID != "r1" {
		t.Errorf("internal record mutated through Records() copy: %s", fresh[0].ID)
	}
}

func TestConcurrentAppends(t *testing.T) {
	log := NewLog()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := log.Append(context.Background(), models.MutationRecord{}); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(log.Records()); got != 100 {
		t.Errorf("Records() = %d entries, want 100", got)
	}
}
