package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
	"github.com/kailas-cloud/staysearch/internal/domain/search/request"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/staysearch/internal/logger"
	"github.com/kailas-cloud/staysearch/internal/metrics"
)

// Service compares FLAT and HNSW search over the same query embedding.
type Service struct {
	repo  Repository
	embed Embedder
	now   func() time.Time
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, now: time.Now}
}

// Search embeds the query once, then runs the FLAT and HNSW branches one
// after the other with the same price pre-filter and candidate count. Each
// branch is post-filtered independently. Any embedding or store error aborts
// the whole comparison.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Comparison, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return result.Comparison{}, fmt.Errorf("vectorize query: %w", err)
	}

	flat, err := s.runBranch(ctx, algorithm.Flat, emb.Embedding, req)
	if err != nil {
		return result.Comparison{}, err
	}
	hnsw, err := s.runBranch(ctx, algorithm.HNSW, emb.Embedding, req)
	if err != nil {
		return result.Comparison{}, err
	}

	return result.Comparison{Flat: flat, HNSW: hnsw}, nil
}

func (s *Service) runBranch(
	ctx context.Context, algo algorithm.Algorithm, vector []float32, req *request.Request,
) (result.Branch, error) {
	start := s.now()
	candidates, err := s.repo.SearchKNN(ctx, algo, vector, req.Filters(), req.Candidates())
	elapsed := s.now().Sub(start)

	metrics.SearchDuration.WithLabelValues(string(algo)).Observe(elapsed.Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(algo), "error").Inc()
		return result.Branch{}, fmt.Errorf("search %s: %w", algo, err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(algo), "ok").Inc()

	hits, skipped := postFilter(ctx, algo, candidates, req.TopK(), req.WifiRequired())
	return result.NewBranch(algo, hits, elapsed, len(candidates), skipped), nil
}

// postFilter walks candidates in distance order and accepts up to topK.
// Candidates with an unreadable price, accommodates or amenities field are
// skipped and reported; when WiFi
// is required, candidates without the Wifi tag are dropped silently.
func postFilter(
	ctx context.Context, algo algorithm.Algorithm,
	candidates []result.Candidate, topK int, wifiRequired bool,
) ([]result.Hit, []result.Skip) {
	log := logpkg.FromContext(ctx)

	var hits []result.Hit
	var skipped []result.Skip
	for _, c := range candidates {
		if len(hits) >= topK {
			break
		}

		if c.Err != nil {
			log.Warn("Skipping listing with unreadable field",
				zap.String("algorithm", string(algo)),
				zap.String("listing_id", c.ID),
				zap.String("field", c.BadField),
				zap.Error(c.Err),
			)
			metrics.SearchSkippedTotal.WithLabelValues(string(algo), "malformed_"+c.BadField).Inc()
			skipped = append(skipped, result.Skip{ID: c.ID, Field: c.BadField, Err: c.Err})
			continue
		}

		tags, err := domlisting.ParseAmenities(c.Amenities)
		if err != nil {
			log.Warn("Skipping listing with malformed amenities",
				zap.String("algorithm", string(algo)),
				zap.String("listing_id", c.ID),
				zap.Error(err),
			)
			metrics.SearchSkippedTotal.WithLabelValues(string(algo), "malformed_amenities").Inc()
			skipped = append(skipped, result.Skip{ID: c.ID, Field: domlisting.FieldAmenities, Err: err})
			continue
		}
		if wifiRequired && !domlisting.HasWifi(tags) {
			metrics.SearchSkippedTotal.WithLabelValues(string(algo), "no_wifi").Inc()
			continue
		}

		l := result.NewListing(c.ID, c.Name, c.Space, c.Price, c.Accommodates, tags)
		hits = append(hits, result.NewHit(algo, l, c.Distance))
	}
	return hits, skipped
}
