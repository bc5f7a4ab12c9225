package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/web"
)

// IdempotencyKeyHeader is the request header carrying the client idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"

	// inProgressTTL bounds how long a key stays reserved if the process dies
	// before storing the response.
	inProgressTTL = 30 * time.Second
)

// ErrRequestInProgress indicates that a request with the same idempotency key is being processed.
var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of an unsafe request repeated with
// the same Idempotency-Key header. Requests without the header pass through.
//
// A duplicate arriving while the first request is still processed gets 409.
// Server errors are not stored, so such requests may be retried.
func Idempotency(cache *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		switch gctx.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			gctx.Next()
			return
		}

		key := gctx.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			gctx.Next()
			return
		}

		ctx := gctx.Request.Context()
		l := zerolog.Ctx(ctx).With().Str("idempotency_key", key).Logger()

		cacheKey := idempotencyCacheKey(gctx.Request.Method, gctx.FullPath(), key)

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, min(ttl, inProgressTTL)).Result()
		if err != nil {
			l.Error().Err(err).Msg("idempotency reservation failed")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		if !reserved {
			replay(gctx, cache, cacheKey, l)
			return
		}

		w := &bodyRecorder{ResponseWriter: gctx.Writer}
		gctx.Writer = w

		gctx.Next()

		if w.Status() >= http.StatusInternalServerError {
			if err := cache.Del(ctx, cacheKey).Err(); err != nil {
				l.Error().Err(err).Msg("idempotency cleanup failed")
			}

			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			l.Error().Err(err).Msg("idempotent response encoding failed")
			cache.Del(ctx, cacheKey)

			return
		}

		if err := cache.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
			l.Error().Err(err).Msg("idempotent response persistence failed")
			cache.Del(ctx, cacheKey)
		}
	}
}

func idempotencyCacheKey(method, path, key string) string {
	return idempotencyPrefix + method + ":" + path + ":" + key
}

func replay(gctx *gin.Context, cache *redis.Client, cacheKey string, l zerolog.Logger) {
	cached, err := cache.Get(gctx.Request.Context(), cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			// The first request failed and released the key in the meantime.
			gctx.AbortWithStatusJSON(http.StatusConflict, web.Error(ErrRequestInProgress))
			return
		}

		l.Error().Err(err).Msg("idempotency lookup failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	if cached == inProgressMarker {
		gctx.AbortWithStatusJSON(http.StatusConflict, web.Error(ErrRequestInProgress))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		l.Warn().Err(err).Msg("stored idempotent response is malformed")
		gctx.AbortWithStatusJSON(http.StatusConflict, web.Error(ErrRequestInProgress))

		return
	}

	gctx.Header("Idempotent-Replayed", "true")
	gctx.Data(stored.Status, stored.ContentType, stored.Body)
	gctx.Abort()
}
