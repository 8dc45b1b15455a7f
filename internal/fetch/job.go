package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// MinJobTextLength is the shortest extracted posting accepted as real content.
const MinJobTextLength = 200

// JobFetcher downloads job postings and caches their extracted text.
type JobFetcher struct {
	opts   *Options
	cache  *expirable.LRU[string, string]
	logger *zap.Logger
}

// NewJobFetcher creates a fetcher caching up to size postings for ttl.
func NewJobFetcher(opts *Options, size int, ttl time.Duration, logger *zap.Logger) *JobFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if size <= 0 {
		size = 128
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobFetcher{
		opts:   opts,
		cache:  expirable.NewLRU[string, string](size, nil, ttl),
		logger: logger,
	}
}

// JobText returns the posting text at urlStr.
func (f *JobFetcher) JobText(ctx context.Context, urlStr string) (string, error) {
	if text, ok := f.cache.Get(urlStr); ok {
		return text, nil
	}

	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(urlStr)
	text, err := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	if len(strings.TrimSpace(text)) < MinJobTextLength {
		// Usually a page rendered client-side; the caller can ask for pasted text instead.
		return "", &Error{URL: urlStr, Message: "page has too little text to be a job posting"}
	}

	f.logger.Debug("fetched job posting",
		zap.String("url", urlStr),
		zap.String("platform", string(platform)),
		zap.Int("chars", len(text)),
	)
	f.cache.Add(urlStr, text)
	return text, nil
}
