package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func approvedAccount(t *testing.T, repo *fakeRepo, email string) dom.Account {
	t.Helper()
	svc := NewAccountService(repo, nil)
	a, err := svc.Register(context.Background(), "Test", email, "pw")
	if err != nil {
		t.Fatal(err)
	}
	a, err = svc.Approve(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// checkBalanceMatchesLedger asserts the cross-cutting invariant: the balance
// equals the net sum of the transaction history.
func checkBalanceMatchesLedger(t *testing.T, repo *fakeRepo, accountID string) {
	t.Helper()
	a, err := repo.GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatal(err)
	}
	txs, err := repo.ListTransactions(context.Background(), accountID)
	if err != nil {
		t.Fatal(err)
	}
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Delta())
	}
	if !a.Balance.Equal(sum) {
		t.Fatalf("balance=%s but ledger sums to %s", a.Balance, sum)
	}
}

func TestDepositThenWithdraw(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLedgerService(repo, nil, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	if _, err := svc.Apply(ctx, a.ID, dom.KindDeposit, dec("100")); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Apply(ctx, a.ID, dom.KindWithdraw, dec("40"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Balance.Equal(dec("60")) {
		t.Fatalf("balance=%s want=60", got.Balance)
	}

	txs, err := repo.ListTransactions(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("transactions=%d want=2", len(txs))
	}
	// History keeps application order.
	if txs[0].Kind != dom.KindDeposit || txs[1].Kind != dom.KindWithdraw {
		t.Fatalf("history order wrong: %s then %s", txs[0].Kind, txs[1].Kind)
	}
	if txs[0].OccurredAt.IsZero() || txs[1].OccurredAt.IsZero() {
		t.Fatal("transactions must carry the application timestamp")
	}
	checkBalanceMatchesLedger(t, repo, a.ID)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLedgerService(repo, nil, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	if _, err := svc.Apply(ctx, a.ID, dom.KindDeposit, dec("30")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Apply(ctx, a.ID, dom.KindWithdraw, dec("50")); !errors.Is(err, dom.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	// Rejected in full: balance untouched, no record appended.
	cur, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !cur.Balance.Equal(dec("30")) {
		t.Fatalf("balance=%s want=30", cur.Balance)
	}
	txs, _ := repo.ListTransactions(ctx, a.ID)
	if len(txs) != 1 {
		t.Fatalf("transactions=%d want=1", len(txs))
	}
	checkBalanceMatchesLedger(t, repo, a.ID)
}

func TestApplyRejectsBadInput(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLedgerService(repo, nil, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	cases := []struct {
		name   string
		kind   string
		amount decimal.Decimal
		want   error
	}{
		{"zero deposit", dom.KindDeposit, dec("0"), dom.ErrAmountNotPositive},
		{"negative deposit", dom.KindDeposit, dec("-5"), dom.ErrAmountNotPositive},
		{"negative withdraw", dom.KindWithdraw, dec("-5"), dom.ErrAmountNotPositive},
		{"unknown kind", "transfer", dec("5"), dom.ErrUnknownKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(ctx, a.ID, tc.kind, tc.amount); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	// No input error may leave a trace in the ledger.
	txs, _ := repo.ListTransactions(ctx, a.ID)
	if len(txs) != 0 {
		t.Fatalf("transactions=%d want=0", len(txs))
	}
	cur, _ := repo.GetByID(ctx, a.ID)
	if !cur.Balance.IsZero() {
		t.Fatalf("balance=%s want=0", cur.Balance)
	}
}

func TestStatementReflectsLedger(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedgerService(repo, nil, nil)
	accounts := NewAccountService(repo, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	if _, err := ledger.Apply(ctx, a.ID, dom.KindDeposit, dec("100")); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Apply(ctx, a.ID, dom.KindWithdraw, dec("40")); err != nil {
		t.Fatal(err)
	}

	st, err := accounts.Statement(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Account.Balance.Equal(dec("60")) {
		t.Fatalf("statement balance=%s want=60", st.Account.Balance)
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("statement transactions=%d want=2", len(st.Transactions))
	}
	if st.Transactions[0].Kind != dom.KindDeposit || st.Transactions[1].Kind != dom.KindWithdraw {
		t.Fatalf("statement order wrong: %s then %s", st.Transactions[0].Kind, st.Transactions[1].Kind)
	}
}

func TestStatementNeverOutOfSync(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewLedgerService(repo, nil, nil)
	accounts := NewAccountService(repo, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	// Hammer the ledger while reading statements: every observed statement
	// must have its balance equal the net sum of its own history, no matter
	// where the reads land between writes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := ledger.Apply(ctx, a.ID, dom.KindDeposit, dec("100")); err != nil {
				t.Errorf("deposit: %v", err)
				return
			}
			if _, err := ledger.Apply(ctx, a.ID, dom.KindWithdraw, dec("60")); err != nil {
				t.Errorf("withdraw: %v", err)
				return
			}
		}
	}()

	checkStatement := func() {
		st, err := accounts.Statement(ctx, a.ID)
		if err != nil {
			t.Fatal(err)
		}
		sum := decimal.Zero
		for _, tx := range st.Transactions {
			sum = sum.Add(tx.Delta())
		}
		if !st.Account.Balance.Equal(sum) {
			t.Fatalf("statement observed out of sync: balance=%s but history sums to %s",
				st.Account.Balance, sum)
		}
	}

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		checkStatement()
	}
	checkStatement()
}

func TestHistoryOrderWithEqualTimestamps(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	// Timestamps can collide; insertion order still decides the history.
	now := time.Now().UTC()
	ids := []string{"tx-1", "tx-2", "tx-3"}
	for _, id := range ids {
		_, err := repo.ApplyTransaction(ctx, dom.Transaction{
			ID:         id,
			AccountID:  a.ID,
			Kind:       dom.KindDeposit,
			Amount:     dec("10"),
			OccurredAt: now,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	txs, err := repo.ListTransactions(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != len(ids) {
		t.Fatalf("transactions=%d want=%d", len(txs), len(ids))
	}
	for i, id := range ids {
		if txs[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, txs[i].ID, id)
		}
	}
}

func TestApplyUnknownAccount(t *testing.T) {
	svc := NewLedgerService(newFakeRepo(), nil, nil)
	if _, err := svc.Apply(context.Background(), "missing", dom.KindDeposit, dec("10")); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestConcurrentWithdrawals(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLedgerService(repo, nil, nil)
	ctx := context.Background()
	a := approvedAccount(t, repo, "alice@example.com")

	if _, err := svc.Apply(ctx, a.ID, dom.KindDeposit, dec("100")); err != nil {
		t.Fatal(err)
	}

	// Two simultaneous withdrawals of 60 against 100: exactly one may pass.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Apply(ctx, a.ID, dom.KindWithdraw, dec("60"))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, dom.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("ok=%d insufficient=%d want 1/1", ok, insufficient)
	}

	cur, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !cur.Balance.Equal(dec("40")) {
		t.Fatalf("balance=%s want=40", cur.Balance)
	}
	checkBalanceMatchesLedger(t, repo, a.ID)
}
