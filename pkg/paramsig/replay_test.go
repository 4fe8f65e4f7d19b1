package paramsig

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestReplayGuard(t *testing.T) {
	guard, err := NewReplayGuard(time.Minute)
	if nil != err {
		t.Fatalf("failed NewReplayGuard, got error %v", err)
	}

	at := time.UnixMilli(1704164645678)
	if guard.Seen("A", at) {
		t.Error("first presentation reported as seen")
	}
	if !guard.Seen("A", at) {
		t.Error("second presentation not reported")
	}
	if guard.Seen("B", at) {
		t.Error("other signature reported as seen")
	}

	// a much more recent signature recycles the slot of at
	later := at.Add(16 * 15 * time.Second)
	if guard.Seen("C", later) {
		t.Error("recent signature reported as seen")
	}
	if !guard.Seen("D", at) {
		t.Error("expired date not rejected")
	}

	_, err = NewReplayGuard(0)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewReplayGuard(0) did not fail with ErrInvalidArgument, got %v", err)
	}
}

func TestReplayGuardConcurrent(t *testing.T) {
	guard, err := NewReplayGuard(time.Minute)
	if nil != err {
		t.Fatalf("failed NewReplayGuard, got error %v", err)
	}

	at := time.Now()
	var wg sync.WaitGroup
	var mut sync.Mutex
	accepted := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !guard.Seen("SAME", at) {
				mut.Lock()
				accepted += 1
				mut.Unlock()
			}
		}()
	}
	wg.Wait()
	if 1 != accepted {
		t.Errorf("signature accepted %d times", accepted)
	}
}

func TestVerifyReplay(t *testing.T) {
	guard, err := NewReplayGuard(DefaultValidity)
	if nil != err {
		t.Fatalf("failed NewReplayGuard, got error %v", err)
	}
	signer, clock := newTestSigner(t, "secret", WithReplayGuard(guard))

	query, err := signer.Sign(Params{"userID": "alice"})
	if nil != err {
		t.Fatalf("failed Sign, got error %v", err)
	}
	if !signer.VerifyQuery(query) {
		t.Fatal("failed first verification")
	}
	if signer.VerifyQuery(query) {
		t.Error("replayed query accepted")
	}

	clock.Add(time.Millisecond)
	fresh, err := signer.Sign(Params{"userID": "alice"})
	if nil != err {
		t.Fatalf("failed Sign, got error %v", err)
	}
	if !signer.VerifyQuery(fresh) {
		t.Error("fresh query rejected")
	}
}
