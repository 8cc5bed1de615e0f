package selection

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/convergence-jukebox/backend/internal/domain/catalog"
	"github.com/convergence-jukebox/backend/internal/infra/store"
)

type nopEvents struct{}

func (nopEvents) LogCredit(balance int) {}
func (nopEvents) LogEvent(msg string)   {}

func newService(t *testing.T) (*Service, *store.PaidQueueStore) {
	t.Helper()
	fs := afero.NewMemMapFs()
	paid := store.NewPaidQueueStore(fs, "PaidMusicPlayList.txt")
	if err := paid.Ensure(); err != nil {
		t.Fatal(err)
	}
	c := catalog.New([]catalog.SongRecord{
		{Index: 0, Title: "Johnny B. Goode", Artist: "Chuck Berry"},
		{Index: 1, Title: "A Very Long Song Title That Keeps Going", Artist: "An Artist With A Remarkably Long Name"},
		{Index: 2, Title: "Lola", Artist: "The Kinks"},
	})
	return NewService(c, paid, nopEvents{}), paid
}

func TestEnqueueAccepted(t *testing.T) {
	svc, paid := newService(t)
	svc.AddCredit()

	res, err := svc.Enqueue(0)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if res.Status != StatusAccepted {
		t.Fatalf("Status = %s, want accepted", res.Status)
	}
	if res.Receipt == "" {
		t.Error("accepted result missing receipt")
	}
	if res.Credits != 0 {
		t.Errorf("Credits = %d, want 0 after debit", res.Credits)
	}

	if q := paid.Read(); !reflect.DeepEqual(q, []int{0}) {
		t.Errorf("paid queue = %v, want [0]", q)
	}
	if up := svc.Upcoming(); !reflect.DeepEqual(up, []string{"Johnny B. Goode - Chuck Berry"}) {
		t.Errorf("upcoming = %v", up)
	}
}

func TestEnqueueDuplicateRollsBack(t *testing.T) {
	svc, paid := newService(t)
	svc.AddCredit()
	svc.AddCredit()

	if _, err := svc.Enqueue(2); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Enqueue(2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusDuplicate {
		t.Fatalf("Status = %s, want duplicate", res.Status)
	}
	if res.Credits != 1 {
		t.Errorf("Credits = %d, want 1 (no debit on rejection)", res.Credits)
	}

	// Exactly one copy survives in storage and in the read model.
	if q := paid.Read(); !reflect.DeepEqual(q, []int{2}) {
		t.Errorf("paid queue = %v, want [2]", q)
	}
	if up := svc.Upcoming(); len(up) != 1 {
		t.Errorf("upcoming = %v, want one entry", up)
	}
}

func TestEnqueueNotFound(t *testing.T) {
	svc, paid := newService(t)
	svc.AddCredit()

	res, err := svc.Enqueue(42)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusNotFound {
		t.Errorf("Status = %s, want notFound", res.Status)
	}
	if q := paid.Read(); len(q) != 0 {
		t.Errorf("paid queue = %v, want empty", q)
	}
	if svc.Credits() != 1 {
		t.Errorf("Credits = %d, want 1", svc.Credits())
	}
}

func TestEnqueueWithoutCredit(t *testing.T) {
	svc, paid := newService(t)

	res, err := svc.Enqueue(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusNoCredit {
		t.Errorf("Status = %s, want noCredit", res.Status)
	}
	if q := paid.Read(); len(q) != 0 {
		t.Errorf("paid queue = %v, want empty", q)
	}
}

func TestEnqueueSeesEngineConsumption(t *testing.T) {
	// After the engine drains an index, re-enqueueing it must be accepted:
	// the dedupe check runs against a fresh read, not a cached copy.
	svc, paid := newService(t)
	svc.AddCredit()
	svc.AddCredit()

	if _, err := svc.Enqueue(0); err != nil {
		t.Fatal(err)
	}
	// Engine consumes it.
	if err := paid.Write([]int{}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Enqueue(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusAccepted {
		t.Errorf("Status = %s, want accepted after consumption", res.Status)
	}
	if q := paid.Read(); !reflect.DeepEqual(q, []int{0}) {
		t.Errorf("paid queue = %v, want [0]", q)
	}
}

func TestUpcomingTruncatesDisplayFields(t *testing.T) {
	svc, _ := newService(t)
	svc.AddCredit()

	if _, err := svc.Enqueue(1); err != nil {
		t.Fatal(err)
	}

	up := svc.Upcoming()
	if len(up) != 1 {
		t.Fatalf("upcoming = %v", up)
	}
	parts := strings.SplitN(up[0], " - ", 2)
	if len(parts[0]) > 22 || len(parts[1]) > 22 {
		t.Errorf("upcoming entry fields exceed 22 chars: %q", up[0])
	}
}

func TestConsumeUpcoming(t *testing.T) {
	svc, _ := newService(t)
	svc.AddCredit()
	svc.AddCredit()
	if _, err := svc.Enqueue(0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Enqueue(2); err != nil {
		t.Fatal(err)
	}

	svc.ConsumeUpcoming()
	up := svc.Upcoming()
	if !reflect.DeepEqual(up, []string{"Lola - The Kinks"}) {
		t.Errorf("upcoming = %v, want [Lola - The Kinks]", up)
	}

	// Consuming past empty is harmless.
	svc.ConsumeUpcoming()
	svc.ConsumeUpcoming()
	if up := svc.Upcoming(); len(up) != 0 {
		t.Errorf("upcoming = %v, want empty", up)
	}
}

func TestCredits(t *testing.T) {
	svc, _ := newService(t)

	if svc.Credits() != 0 {
		t.Errorf("Credits = %d, want 0", svc.Credits())
	}
	if got := svc.AddCredit(); got != 1 {
		t.Errorf("AddCredit = %d, want 1", got)
	}
	if got := svc.AddCredit(); got != 2 {
		t.Errorf("AddCredit = %d, want 2", got)
	}
}
