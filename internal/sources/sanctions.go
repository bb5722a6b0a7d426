package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/signal"
)

// SanctionsSource matches subjects against a sanctions watchlist held in
// memory. List data is injected; DefaultSanctionsEntries provides a small
// development set.
type SanctionsSource struct {
	entries   []ListEntry
	addresses map[string]ListEntry // lowercased chain address -> entry
	now       func() time.Time
}

// NewSanctionsSource builds a source over the given list entries. Entries
// whose Ref is a 0x address are additionally indexed for wallet subjects.
func NewSanctionsSource(entries []ListEntry) *SanctionsSource {
	s := &SanctionsSource{
		entries:   entries,
		addresses: make(map[string]ListEntry),
		now:       time.Now,
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Ref, "0x") {
			s.addresses[strings.ToLower(e.Ref)] = e
		}
	}
	return s
}

func (s *SanctionsSource) Name() string { return "sanctions" }

func (s *SanctionsSource) Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *ListEntry
	var matched string
	if subject.Kind == signal.KindWallet {
		if e, ok := s.addresses[strings.ToLower(subject.WalletAddress)]; ok {
			entry, matched = &e, e.Ref
		}
	} else {
		entry, matched = matchList(s.entries, subject.Name)
	}
	if entry == nil {
		return nil, nil // checked and clear
	}

	msg := fmt.Sprintf("subject matched sanctions list entry %q", entry.Name)
	if matched != entry.Name {
		msg = fmt.Sprintf("subject matched sanctions list entry %q via alias %q", entry.Name, matched)
	}
	refs := append([]string(nil), entry.Programs...)
	if entry.Ref != "" {
		refs = append(refs, entry.Ref)
	}
	return &signal.Finding{
		ID:           idgen.WithPrefix("fnd_"),
		Source:       s.Name(),
		Category:     signal.CategorySanctions,
		Severity:     signal.SeverityCritical,
		Score:        60,
		Message:      msg,
		EvidenceRefs: refs,
		ObservedAt:   s.now().UTC(),
	}, nil
}

// DefaultSanctionsEntries is a tiny development watchlist. Production
// deployments load a real list feed instead.
func DefaultSanctionsEntries() []ListEntry {
	return []ListEntry{
		{
			Name:     "Volkov Trading House",
			Aliases:  []string{"VTH Holdings", "Volkov Trade LLC"},
			Country:  "RU",
			Programs: []string{"OFAC-SDN"},
			Ref:      "SDN-14021",
		},
		{
			Name:     "Hamid Al-Rashid",
			Aliases:  []string{"H. Rashid"},
			Country:  "SY",
			Programs: []string{"OFAC-SDN", "EU-RESTRICTIVE"},
			Ref:      "SDN-22903",
		},
		{
			Name:     "Tornado Relay Service",
			Country:  "KP",
			Programs: []string{"OFAC-SDN"},
			Ref:      "0x722122df12d4e14e13ac3b6895a86e84145b6967",
		},
	}
}
