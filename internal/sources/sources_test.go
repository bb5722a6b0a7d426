package sources

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stripe/stripe-go/v81"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/riskscreen/internal/signal"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Al-Rashid  Trading, LLC", "al rashid trading llc"},
		{"al rashid trading llc", "al rashid trading llc"},
		{"  Volkov   Trading House ", "volkov trading house"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanctionsSource_NameMatch(t *testing.T) {
	src := NewSanctionsSource(DefaultSanctionsEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind: signal.KindEntity,
		Name: "volkov trading house",
	})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "sanctions", f.Source)
	assert.Equal(t, signal.CategorySanctions, f.Category)
	assert.Equal(t, signal.SeverityCritical, f.Severity)
	assert.Equal(t, float64(60), f.Score)
	assert.Contains(t, f.EvidenceRefs, "OFAC-SDN")
}

func TestSanctionsSource_AliasMatch(t *testing.T) {
	src := NewSanctionsSource(DefaultSanctionsEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind: signal.KindEntity,
		Name: "VTH Holdings",
	})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Contains(t, f.Message, "alias")
}

func TestSanctionsSource_WalletAddressMatch(t *testing.T) {
	src := NewSanctionsSource(DefaultSanctionsEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind:          signal.KindWallet,
		WalletAddress: "0x722122dF12D4e14e13Ac3b6895a86e84145b6967",
	})
	require.NoError(t, err)
	require.NotNil(t, f, "address match should be case-insensitive")
}

func TestSanctionsSource_Clear(t *testing.T) {
	src := NewSanctionsSource(DefaultSanctionsEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind: signal.KindIndividual,
		Name: "Jane Ordinary",
	})
	require.NoError(t, err)
	assert.Nil(t, f, "unlisted subject should come back clear")
}

func TestPEPSource_WalletAlwaysClear(t *testing.T) {
	src := NewPEPSource(DefaultPEPEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind:          signal.KindWallet,
		WalletAddress: "0x1234567890123456789012345678901234567890",
	})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestPEPSource_Match(t *testing.T) {
	src := NewPEPSource(DefaultPEPEntries())

	f, err := src.Fetch(context.Background(), signal.Subject{
		Kind: signal.KindIndividual,
		Name: "Elena Marchetti",
	})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, signal.CategoryPEP, f.Category)
	assert.Equal(t, signal.SeverityHigh, f.Severity)
}

type fakeChainReader struct {
	balance *big.Int
	nonce   uint64
	code    []byte
	err     error
}

func (f *fakeChainReader) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	return f.balance, f.err
}
func (f *fakeChainReader) NonceAt(_ context.Context, _ common.Address, _ *big.Int) (uint64, error) {
	return f.nonce, f.err
}
func (f *fakeChainReader) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	return f.code, f.err
}

const testWallet = "0x1234567890123456789012345678901234567890"

func TestChainSource_NonWalletClear(t *testing.T) {
	src := NewChainSource(&fakeChainReader{})
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestChainSource_InvalidAddress(t *testing.T) {
	src := NewChainSource(&fakeChainReader{})
	_, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: "not-an-address"})
	assert.Error(t, err)
}

func TestChainSource_ContractAddress(t *testing.T) {
	src := NewChainSource(&fakeChainReader{
		balance: big.NewInt(0),
		code:    []byte{0x60, 0x80},
	})
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: testWallet})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, signal.CategoryCrypto, f.Category)
	assert.Contains(t, f.Message, "contract")
}

func TestChainSource_DustWallet(t *testing.T) {
	src := NewChainSource(&fakeChainReader{
		balance: big.NewInt(1e12), // well under 0.001 ETH
		nonce:   5000,
	})
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: testWallet})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Contains(t, f.Message, "dust wallet")
}

func TestChainSource_OrdinaryWalletClear(t *testing.T) {
	src := NewChainSource(&fakeChainReader{
		balance: new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		nonce:   40,
	})
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: testWallet})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestChainSource_RPCError(t *testing.T) {
	src := NewChainSource(&fakeChainReader{err: errors.New("connection refused")})
	_, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: testWallet})
	assert.Error(t, err)
}

type fakeDisputeLister struct {
	disputes []*stripe.Dispute
	err      error
}

func (f *fakeDisputeLister) ListDisputes(_ context.Context, _ string, _ time.Duration) ([]*stripe.Dispute, error) {
	return f.disputes, f.err
}

func TestDisputeSource_NoDisputesClear(t *testing.T) {
	src := NewDisputeSource(&fakeDisputeLister{}, 0)
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestDisputeSource_FraudCodedDisputes(t *testing.T) {
	src := NewDisputeSource(&fakeDisputeLister{disputes: []*stripe.Dispute{
		{ID: "dp_1", Reason: stripe.DisputeReasonFraudulent},
		{ID: "dp_2", Reason: stripe.DisputeReasonProductNotReceived},
		{ID: "dp_3", Reason: stripe.DisputeReasonFraudulent},
	}}, 0)

	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, signal.CategoryFraud, f.Category)
	assert.Equal(t, signal.SeverityHigh, f.Severity)
	assert.Equal(t, float64(35), f.Score)
	assert.Equal(t, []string{"dp_1", "dp_2", "dp_3"}, f.EvidenceRefs)
}

func TestDisputeSource_MediumWithoutFraudCode(t *testing.T) {
	src := NewDisputeSource(&fakeDisputeLister{disputes: []*stripe.Dispute{
		{ID: "dp_1", Reason: stripe.DisputeReasonProductNotReceived},
	}}, 0)

	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, signal.SeverityMedium, f.Severity)
}

func TestDisputeSource_WalletClear(t *testing.T) {
	src := NewDisputeSource(&fakeDisputeLister{disputes: []*stripe.Dispute{{ID: "dp_1"}}}, 0)
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindWallet, WalletAddress: testWallet})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestAdverseMediaSource_Findings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Shadow Imports", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[
			{"title":"Shadow Imports probed for fraud","url":"https://news.example/1","topics":["fraud"]},
			{"title":"Regulator fines Shadow Imports","url":"https://news.example/2","topics":["enforcement"]}
		]}`))
	}))
	defer ts.Close()

	src := NewAdverseMediaSource(ts.URL, ts.Client())
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Shadow Imports"})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, signal.CategoryAdverseMedia, f.Category)
	assert.Equal(t, float64(15), f.Score)
	assert.Len(t, f.EvidenceRefs, 2)
}

func TestAdverseMediaSource_EmptyClear(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	defer ts.Close()

	src := NewAdverseMediaSource(ts.URL, ts.Client())
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindIndividual, Name: "Jane Ordinary"})
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestAdverseMediaSource_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	src := NewAdverseMediaSource(ts.URL, ts.Client())
	_, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx should not be retried")
}

func TestAdverseMediaSource_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"articles":[{"title":"t","url":"https://news.example/1"}]}`))
	}))
	defer ts.Close()

	src := NewAdverseMediaSource(ts.URL, ts.Client())
	f, err := src.Fetch(context.Background(), signal.Subject{Kind: signal.KindEntity, Name: "Acme"})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, int32(2), calls.Load())
}
