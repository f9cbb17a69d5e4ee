package reprint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pharmabill/m/domain"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/store"
	"pharmabill/m/internal/words"
)

type fakeInvoices map[string]domain.Invoice

func (f fakeInvoices) GetMany(ctx context.Context, nos []string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	seen := map[string]bool{}
	for _, no := range nos {
		if inv, ok := f[no]; ok && !seen[no] {
			seen[no] = true
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	profile *domain.CompanyProfile
}

func (f fakeProfiles) Get(ctx context.Context) (*domain.CompanyProfile, error) {
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	return f.profile, nil
}

type memorySink struct {
	mu      sync.Mutex
	docs    map[string][]byte
	fail    string
	active  int32
	maxSeen int32
}

func (s *memorySink) Put(ctx context.Context, name string, body []byte) (string, error) {
	n := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)
	for {
		seen := atomic.LoadInt32(&s.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&s.maxSeen, seen, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	if name == s.fail {
		return "", errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = map[string][]byte{}
	}
	s.docs[name] = body
	return "mem://" + name, nil
}

func invoice(no string, total float64) domain.Invoice {
	return domain.Invoice{
		InvoiceNo: no,
		Date:      "2024-03-05",
		Items: []domain.LineItem{
			{Name: "Paracetamol", HSN: "3004", Quantity: 1, SaleRate: total, TaxableValue: total, TotalAmount: total},
		},
	}
}

func fixtures() (fakeInvoices, fakeProfiles) {
	invoices := fakeInvoices{}
	for _, no := range []string{"GD/1", "GD/2", "GD/3", "GD/4", "GD/5", "GD/6"} {
		invoices[no] = invoice(no, 100)
	}
	profile := &domain.CompanyProfile{ID: 1, CompanyName: "GOPI DISTRIBUTOR", InvoiceTemplate: domain.TemplateModern}
	return invoices, fakeProfiles{profile: profile}
}

func TestRun(t *testing.T) {
	invoices, profiles := fixtures()
	sink := &memorySink{}
	r := New(invoices, profiles, render.NewEngine(nil, render.DefaultOptions()), sink, 2, nil)

	nos := []string{"GD/3", "GD/1", "GD/2", "GD/4", "GD/5", "GD/6"}
	res, err := r.Run(context.Background(), Request{InvoiceNos: nos, Template: domain.TemplateAuthentic})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.JobID == "" || res.Template != domain.TemplateAuthentic {
		t.Fatalf("unexpected result header %+v", res)
	}
	if len(res.Documents) != len(nos) {
		t.Fatalf("got %d documents", len(res.Documents))
	}
	for i, doc := range res.Documents {
		if doc.InvoiceNo != nos[i] {
			t.Fatalf("document %d = %s, want %s", i, doc.InvoiceNo, nos[i])
		}
		want := render.FileName(domain.TemplateAuthentic, nos[i])
		if doc.Name != want || doc.Location != "mem://"+want {
			t.Fatalf("document %d = %+v", i, doc)
		}
		if body := sink.docs[want]; !strings.HasPrefix(string(body), "%PDF") {
			t.Fatalf("%s is not a PDF", want)
		}
	}
	if peak := atomic.LoadInt32(&sink.maxSeen); peak > 2 {
		t.Fatalf("saw %d concurrent writes with 2 workers", peak)
	}
}

func TestRunMatchesSingleRender(t *testing.T) {
	invoices, profiles := fixtures()
	sink := &memorySink{}
	engine := render.NewEngine(nil, render.DefaultOptions())
	r := New(invoices, profiles, engine, sink, 4, nil)

	if _, err := r.Run(context.Background(), Request{InvoiceNos: []string{"GD/1", "GD/2"}}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want, err := engine.Render(invoices["GD/1"], profiles.profile, domain.TemplateModern)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got := sink.docs[render.FileName(domain.TemplateModern, "GD/1")]; string(got) != string(want) {
		t.Fatalf("batch output differs from a single render")
	}
}

func TestRunTemplateFallback(t *testing.T) {
	invoices, profiles := fixtures()
	r := New(invoices, profiles, render.NewEngine(nil, render.Options{}), &memorySink{}, 1, nil)

	res, err := r.Run(context.Background(), Request{InvoiceNos: []string{"GD/1"}, Template: "fancy"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Template != domain.TemplateModern {
		t.Fatalf("template = %q, want profile template", res.Template)
	}

	profiles.profile.InvoiceTemplate = "gone"
	res, err = r.Run(context.Background(), Request{InvoiceNos: []string{"GD/1"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Template != render.DefaultTemplate {
		t.Fatalf("template = %q, want %q", res.Template, render.DefaultTemplate)
	}
}

func TestRunErrors(t *testing.T) {
	invoices, profiles := fixtures()
	invoices["BIG"] = invoice("BIG", 2e9)
	engine := render.NewEngine(nil, render.Options{})

	tests := []struct {
		name     string
		profiles fakeProfiles
		sink     *memorySink
		nos      []string
		want     error
		mention  string
	}{
		{"missing invoice", profiles, &memorySink{}, []string{"GD/1", "NOPE"}, store.ErrNotFound, "NOPE"},
		{"missing profile", fakeProfiles{}, &memorySink{}, []string{"GD/1"}, render.ErrMissingProfile, ""},
		{"overflow", profiles, &memorySink{}, []string{"GD/1", "BIG"}, words.ErrAmountOverflow, "BIG"},
		{"sink failure", profiles, &memorySink{fail: render.FileName(domain.TemplateAuthentic, "GD/2")}, []string{"GD/1", "GD/2", "GD/3"}, nil, "GD/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(invoices, tt.profiles, engine, tt.sink, 3, nil)
			res, err := r.Run(context.Background(), Request{InvoiceNos: tt.nos, Template: domain.TemplateAuthentic})
			if err == nil {
				t.Fatalf("expected error, got %+v", res)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Fatalf("error %q should mention %q", err, tt.mention)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	invoices, profiles := fixtures()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(invoices, profiles, render.NewEngine(nil, render.Options{}), &memorySink{}, 2, nil)
	if _, err := r.Run(ctx, Request{InvoiceNos: []string{"GD/1", "GD/2"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
