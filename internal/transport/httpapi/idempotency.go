package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// IdempotencyKeyHeader — заголовок, которым касса помечает повторяемые POST-запросы.
const IdempotencyKeyHeader = "Idempotency-Key"

// bodyCapture дублирует тело ответа в буфер, чтобы сохранить его
// для последующего replay по тому же idempotency-key.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware защищает POST-запросы от двойной обработки.
// Запрос без заголовка Idempotency-Key проходит без изменений.
// Повтор с тем же ключом и телом получает сохранённый ответ;
// тот же ключ с другим телом отклоняется как конфликт.
func IdempotencyMiddleware(repo domain.IdempotencyRepository, logger *log.Entry) gin.HandlerFunc {
	if logger == nil {
		logger = log.WithField("component", "idempotency-middleware")
	}

	return func(c *gin.Context) {
		if repo == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
				Code:    "invalid_request",
				Message: "failed to read request body",
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)

		record, err := repo.CreateProcessing(key, hash, time.Time{})
		switch {
		case err == nil:
			// Первый запрос с этим ключом: обрабатываем и сохраняем ответ.
		case errors.Is(err, domain.ErrIdempotencyHashMismatch):
			c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
				Code:    "idempotency_key_conflict",
				Message: "idempotency key was already used with a different request body",
			})
			return
		case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
			replayRecord(c, record)
			return
		default:
			logger.WithError(err).WithField("idempotency_key", key).Warn("failed to register idempotency key")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
				Code:    "internal_error",
				Message: "internal error",
			})
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		status := capture.Status()
		responseBody := capture.buf.Bytes()
		if status >= http.StatusOK && status < http.StatusBadRequest {
			err = repo.MarkDone(key, responseBody, status)
		} else {
			err = repo.MarkFailed(key, responseBody, status)
		}
		if err != nil {
			logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotency response")
		}
	}
}

func replayRecord(c *gin.Context, record domain.IdempotencyRecord) {
	if record.Status == domain.IdempotencyStatusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			Code:    "request_in_progress",
			Message: "a request with this idempotency key is still being processed",
		})
		return
	}

	c.Header("Idempotency-Replayed", "true")
	c.Data(record.HTTPStatus, "application/json; charset=utf-8", record.ResponseBody)
	c.Abort()
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
