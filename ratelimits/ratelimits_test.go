package ratelimits

import "testing"

func newContainer() *BucketContainer {
	container := &BucketContainer{}
	container.buckets = make(map[string]int8)

	return container
}

func TestDrain(t *testing.T) {
	container := newContainer()

	for i := 0; i < BUCKET_INITIAL_FILL; i++ {
		if err := container.Drain(1, "user"); err != nil {
			t.Fatalf("drain %d failed: %v", i+1, err)
		}
	}

	if err := container.Drain(1, "user"); err == nil {
		t.Fatal("expected an empty bucket to refuse draining")
	}
}

func TestHasKeys(t *testing.T) {
	container := newContainer()

	if !container.HasKeys("fresh") {
		t.Fatal("expected a fresh bucket to have keys")
	}

	container.Set("fresh", 0)

	if container.HasKeys("fresh") {
		t.Fatal("expected an emptied bucket to have no keys")
	}
}

func TestSetPenalty(t *testing.T) {
	container := newContainer()

	container.Set("spammer", -1)

	if container.HasKeys("spammer") {
		t.Fatal("expected a penalized user to have no keys")
	}
	if err := container.Drain(1, "spammer"); err == nil {
		t.Fatal("expected a penalized bucket to refuse draining")
	}
}
