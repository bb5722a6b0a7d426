package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/signal"
)

// PEPSource matches individual and entity subjects against a
// politically-exposed-persons list. Wallet subjects always come back clear;
// PEP status attaches to people, not addresses.
type PEPSource struct {
	entries []ListEntry
	now     func() time.Time
}

func NewPEPSource(entries []ListEntry) *PEPSource {
	return &PEPSource{entries: entries, now: time.Now}
}

func (s *PEPSource) Name() string { return "pep" }

func (s *PEPSource) Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if subject.Kind == signal.KindWallet {
		return nil, nil
	}

	entry, matched := matchList(s.entries, subject.Name)
	if entry == nil {
		return nil, nil
	}

	msg := fmt.Sprintf("subject matched PEP list entry %q", entry.Name)
	if matched != entry.Name {
		msg = fmt.Sprintf("subject matched PEP list entry %q via alias %q", entry.Name, matched)
	}
	refs := append([]string(nil), entry.Programs...)
	if entry.Ref != "" {
		refs = append(refs, entry.Ref)
	}
	return &signal.Finding{
		ID:           idgen.WithPrefix("fnd_"),
		Source:       s.Name(),
		Category:     signal.CategoryPEP,
		Severity:     signal.SeverityHigh,
		Score:        35,
		Message:      msg,
		EvidenceRefs: refs,
		ObservedAt:   s.now().UTC(),
	}, nil
}

// DefaultPEPEntries is a tiny development list. Production deployments load
// a real PEP feed instead.
func DefaultPEPEntries() []ListEntry {
	return []ListEntry{
		{
			Name:     "Elena Marchetti",
			Aliases:  []string{"E. Marchetti"},
			Country:  "IT",
			Programs: []string{"NATIONAL-PARLIAMENT"},
			Ref:      "PEP-3301",
		},
		{
			Name:     "Joseph Adebayo",
			Country:  "NG",
			Programs: []string{"STATE-GOVERNOR"},
			Ref:      "PEP-4417",
		},
	}
}
