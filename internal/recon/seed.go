package recon

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
)

//nolint:gochecknoglobals // Read-only seed vocabulary.
var (
	seedOrganizations = []string{"Acme Corp", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries"}
	seedStatuses      = []string{StatusActive, StatusActive, StatusActive, StatusPaused, StatusFailed, StatusArchived}
	seedHosts         = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
)

// Generator produces deterministic demo assets.
type Generator struct {
	rng     *rand.Rand
	entropy io.Reader
	start   time.Time
}

// NewGenerator creates a generator; the same seed yields the same assets.
func NewGenerator(seed uint64, start time.Time) *Generator {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Generator{
		rng:     rng,
		entropy: ulid.Monotonic(rngReader{rng}, 0),
		start:   start,
	}
}

// Generate returns n assets of kind.
func (g *Generator) Generate(kind Kind, n int) []Asset {
	out := make([]Asset, 0, n)
	for i := range n {
		updated := g.start.Add(-time.Duration(g.rng.IntN(90*24)) * time.Hour)
		org := seedOrganizations[g.rng.IntN(len(seedOrganizations))]
		out = append(out, Asset{
			ID:           ulid.MustNew(ulid.Timestamp(g.start.Add(time.Duration(i)*time.Millisecond)), g.entropy).String(),
			Kind:         kind,
			Name:         g.name(kind, i),
			Organization: org,
			Status:       seedStatuses[g.rng.IntN(len(seedStatuses))],
			Severity:     severityOrder[g.rng.IntN(len(severityOrder))],
			UpdatedAt:    updated.UTC().Truncate(time.Second),
		})
	}
	return out
}

func (g *Generator) name(kind Kind, i int) string {
	host := seedHosts[i%len(seedHosts)]
	switch kind {
	case KindOrganization:
		return fmt.Sprintf("%s-org-%d", host, i)
	case KindSubdomain:
		return fmt.Sprintf("%s%d.example.com", host, i)
	case KindEndpoint:
		return fmt.Sprintf("https://%s%d.example.com/api", host, i)
	case KindScan:
		return fmt.Sprintf("scan-%s-%04d", host, i)
	case KindScheduledJob:
		return fmt.Sprintf("nightly-%s-%d", host, i)
	case KindTool:
		return fmt.Sprintf("%s-scanner-v%d", host, i%5+1)
	case KindTemplateRepo:
		return fmt.Sprintf("github.com/recon/%s-templates-%d", host, i)
	default:
		return fmt.Sprintf("%s-%d.example.com", host, i)
	}
}

// rngReader feeds ULID entropy from a seeded generator.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
