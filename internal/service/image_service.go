package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/repository/contract"
	"tigaraksa-chat-be/internal/repository/specification"

	"github.com/patrickmn/go-cache"
)

const (
	searchLimit  = 8
	catalogueKey = "images:all"
	imageModule  = "ImageService"
	responseTTL  = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

var ErrEmptyQuery = errors.New("search query is empty")

// categoryTerms expands the labels offered by the search form into related
// prompt words. A category matches images whose prompt contains any of them.
var categoryTerms = map[string][]string{
	"Tanaman Pangan":      {"tanaman", "pangan", "padi", "beras", "gandum", "jagung", "cabai", "tomat"},
	"Tanaman Buah":        {"buah", "apel", "jeruk", "mangga", "pisang", "anggur", "durian", "rambutan"},
	"Hewan Ternak":        {"ternak", "sapi", "kambing", "ayam", "bebek", "babi", "kuda", "kerbau"},
	"Hewan Liar":          {"liar", "harimau", "singa", "gajah", "monyet", "burung", "ular", "buaya"},
	"Alat Pertanian":      {"alat", "pertanian", "traktor", "cangkul", "arit", "garpu", "pacul", "bajak"},
	"Proses Menanam":      {"menanam", "penanaman", "bibit", "pupuk", "sawah", "ladang", "bertanam", "musim"},
	"Lingkungan Desa":     {"desa", "lingkungan", "pedesaan", "rumah", "jalan", "tetangga", "perkampungan", "wilayah"},
	"Sampah & Daur Ulang": {"sampah", "daur", "ulang", "botol", "kertas", "plastik", "kaleng", "kaca"},
	"Drum Industri":       {"drum", "industri", "pabrik", "mesin", "bahan", "kimia", "minyak", "tangki"},
	"Keselamatan Anak":    {"anak", "keselamatan", "aman", "bermain", "sekolah", "lindung", "keamanan", "pelindungan"},
	"Cuaca & Musim":       {"cuaca", "musim", "hujan", "panas", "dingin", "angin", "gerimis", "mendung"},
	"Kegiatan Warga":      {"warga", "kegiatan", "gotong", "royong", "acara", "peringatan", "pertemuan", "kerja"},
	"Transportasi Desa":   {"transportasi", "desa", "mobil", "motor", "becak", "angkot", "ojek", "kendaraan"},
}

type IImageService interface {
	ListAll(ctx context.Context) (*dto.SearchResponse, error)
	Search(ctx context.Context, query string) (*dto.SearchResponse, error)
	EnqueueMissingEmbeddings(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type imageService struct {
	repo      contract.ImageRepository
	publisher IPublisherService
	cache     *cache.Cache
	logger    logger.ILogger
}

func NewImageService(repo contract.ImageRepository, publisher IPublisherService, log logger.ILogger) IImageService {
	return &imageService{
		repo:      repo,
		publisher: publisher,
		cache:     cache.New(responseTTL, cacheCleanup),
		logger:    log,
	}
}

func (s *imageService) ListAll(ctx context.Context) (*dto.SearchResponse, error) {
	if cached, ok := s.cache.Get(catalogueKey); ok {
		return cached.(*dto.SearchResponse), nil
	}

	images, err := s.repo.FindAll(ctx,
		specification.HasImageURL{},
		specification.OrderBy{Field: "prompt"},
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	res := &dto.SearchResponse{Query: "all_images", Results: toImageResults(images)}
	s.cache.SetDefault(catalogueKey, res)
	return res, nil
}

func (s *imageService) Search(ctx context.Context, query string) (*dto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := "search:" + query
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*dto.SearchResponse), nil
	}

	var (
		images []*entity.ImageCandidate
		err    error
	)
	if related, ok := categoryTerms[query]; ok {
		terms := append(strings.Fields(strings.ToLower(query)), related...)
		s.logger.Info(imageModule, "Expanded category query", map[string]interface{}{"query": query, "terms": len(terms)})
		images, err = s.repo.SearchByAnyKeyword(ctx, terms, searchLimit)
	} else {
		images, err = s.repo.SearchByKeyword(ctx, query, strings.Fields(query), searchLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}

	s.logger.Info(imageModule, "Keyword search", map[string]interface{}{"query": query, "results": len(images)})

	res := &dto.SearchResponse{Query: query, Results: toImageResults(images)}
	s.cache.SetDefault(key, res)
	return res, nil
}

// EnqueueMissingEmbeddings publishes one indexing message per image without a vector.
func (s *imageService) EnqueueMissingEmbeddings(ctx context.Context) (int, error) {
	images, err := s.repo.FindMissingEmbeddings(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("find unindexed images: %w", err)
	}

	queued := 0
	for _, img := range images {
		payload, err := json.Marshal(dto.IndexImageMessage{ImageId: img.Id})
		if err != nil {
			return queued, err
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			return queued, fmt.Errorf("enqueue image %d: %w", img.Id, err)
		}
		queued++
	}

	s.logger.Info(imageModule, "Queued images for indexing", map[string]interface{}{"count": queued})
	return queued, nil
}

func (s *imageService) Ping(ctx context.Context) error {
	_, err := s.repo.Count(ctx, specification.HasImageURL{})
	return err
}

func toImageResults(images []*entity.ImageCandidate) []dto.ImageResult {
	results := make([]dto.ImageResult, len(images))
	for i, img := range images {
		results[i] = dto.ImageResult{
			Id:         img.Id,
			Prompt:     img.Prompt,
			ImageURL:   img.URL,
			ClipScore:  img.ClipScore,
			Similarity: math.Round(img.Similarity*1000) / 1000,
		}
	}
	return results
}
