// Package render resolves {{token}} placeholders in template bodies from
// caller variables and cached provider data.
package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"golang.org/x/sync/errgroup"
)

// UnavailablePlaceholder replaces tokens whose provider fetch failed. The
// marker is deliberately visible so a degraded render is distinguishable
// from a successful one.
const UnavailablePlaceholder = "[Data unavailable]"

// Service implements the RenderService interface.
type Service struct {
	cache       interfaces.CacheService
	logger      arbor.ILogger
	concurrency int
}

// NewService creates a new render service. concurrency bounds how many
// source resolutions run in parallel within one render.
func NewService(cache interfaces.CacheService, concurrency int, logger arbor.ILogger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		cache:       cache,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Render substitutes every resolvable {{token}} in the body. Dynamic tokens
// are matched to sources by name prefix ({{weather.main.temp}} belongs to
// the source named "weather") and resolved through the cache; resolutions
// for distinct sources run concurrently. Caller variables win on collision,
// failed providers degrade to a visible marker, and unmatched tokens stay
// verbatim.
func (s *Service) Render(ctx context.Context, body string, vars map[string]string, sources []*models.DataSource) (string, error) {
	tokens := ExtractTokens(body)
	if len(tokens) == 0 {
		return body, nil
	}

	resolved := make(map[string]string, len(tokens))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, source := range sources {
		if source == nil || !source.Active {
			continue
		}

		fields := fieldsForSource(source.Name, tokens)
		if len(fields) == 0 {
			continue
		}

		src := source
		g.Go(func() error {
			values := s.resolveSource(gctx, src, fields)
			mu.Lock()
			for token, value := range values {
				resolved[token] = value
			}
			mu.Unlock()
			return nil
		})
	}

	// Source resolution never fails the render; errors degrade per-token
	_ = g.Wait()

	// Caller variables take precedence over dynamic values
	for k, v := range vars {
		resolved[strings.TrimSpace(k)] = v
	}

	out := tokenRegex.ReplaceAllStringFunc(body, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if value, ok := resolved[name]; ok {
			return value
		}
		return match
	})

	return out, nil
}

// fieldsForSource returns the token -> field path pairs belonging to a
// source, matched by name prefix.
func fieldsForSource(sourceName string, tokens []string) map[string]string {
	fields := make(map[string]string)
	for _, token := range tokens {
		prefix, path := splitToken(token)
		if prefix != sourceName || len(path) == 0 {
			continue
		}
		fields[token] = strings.Join(path, ".")
	}
	return fields
}

// resolveSource fetches and extracts every requested field of one source.
// Each field is its own cache key, so a fetch failure on one field does not
// taint the others.
func (s *Service) resolveSource(ctx context.Context, source *models.DataSource, fields map[string]string) map[string]string {
	values := make(map[string]string, len(fields))

	for token, field := range fields {
		data, err := s.cache.GetOrFetch(ctx, source, field, map[string]string{})
		if err != nil {
			s.logger.Warn().
				Str("source_id", source.ID).
				Str("field", field).
				Err(err).
				Msg("Token resolution failed")
			values[token] = UnavailablePlaceholder
			continue
		}
		values[token] = extractField(data, field)
	}

	return values
}

// extractField walks a dotted path through the nested value. A missing
// segment stops the walk and falls back to the string form of the deepest
// map reached. Numeric segments index into arrays.
func extractField(data map[string]interface{}, field string) string {
	var current interface{} = data

	for _, segment := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				return formatValue(node)
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return formatValue(node)
			}
			current = node[idx]
		default:
			return formatValue(current)
		}
	}

	return formatValue(current)
}

// formatValue renders a resolved value as template text. Floats drop the
// trailing zeros JSON decoding would otherwise leave behind.
func formatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// Ensure Service implements RenderService interface
var _ interfaces.RenderService = (*Service)(nil)
