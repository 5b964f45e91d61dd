// Package academy is a typed client of the HitpolyAcademy PHP API.
//
// Every call is a JSON POST to one base URL; the "accion" field selects the endpoint.
// Calls are not retried: progress writes are not idempotent on the server.
package academy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hitpolyacademy/backend/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Actions understood by the academy API
const (
	ActionGetModules     = "getModulosCurso"
	ActionGetClasses     = "getClases"
	ActionGetResources   = "getRecursos"
	ActionGetProgress    = "getProgreso"
	ActionCreateProgress = "progreso"
	ActionUpdateProgress = "update"
)

const statusSuccess = "success"

// maxResponseSize bounds the body read from the academy API
const maxResponseSize = 10 * 1024 * 1024

// Config holds the academy client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the academy API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewClient creates a new academy API client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("academy base URL is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(zap.String("client", "academy")),
		tracer:     otel.Tracer("github.com/hitpolyacademy/backend/internal/academy"),
	}, nil
}

// BaseURL returns the API base URL resources are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCourseModules fetches the modules of a course in API order
func (c *Client) GetCourseModules(ctx context.Context, courseID int) ([]models.Module, error) {
	out, err := post[modulesResponse](ctx, c, ActionGetModules, map[string]any{"id": courseID})
	if err != nil {
		return nil, err
	}

	modules := make([]models.Module, 0, len(out.Modulos))
	for _, m := range out.Modulos {
		modules = append(modules, models.Module{
			ID:    int(m.ID),
			Title: m.Titulo,
			Order: int(m.Orden),
		})
	}
	return modules, nil
}

// GetModuleClasses fetches the classes the API returns for a module.
// The API may return classes of other modules; callers filter by ModuleID.
func (c *Client) GetModuleClasses(ctx context.Context, moduleID int) ([]models.Class, error) {
	out, err := post[classesResponse](ctx, c, ActionGetClasses, map[string]any{"id": moduleID})
	if err != nil {
		return nil, err
	}

	classes := make([]models.Class, 0, len(out.Clases))
	for _, cl := range out.Clases {
		classes = append(classes, models.Class{
			ID:          int(cl.ID),
			ModuleID:    int(cl.ModuloID),
			Title:       cl.Titulo,
			VideoURL:    cl.URLVideo,
			Order:       int(cl.Orden),
			Description: cl.Descripcion,
		})
	}
	return classes, nil
}

// GetResources fetches every resource of the platform with URLs resolved against the base URL
func (c *Client) GetResources(ctx context.Context) ([]models.Resource, error) {
	out, err := post[resourcesResponse](ctx, c, ActionGetResources, nil)
	if err != nil {
		return nil, err
	}

	resources := make([]models.Resource, 0, len(out.Recursos))
	for _, r := range out.Recursos {
		resources = append(resources, models.Resource{
			ID:      int(r.ID),
			ClassID: int(r.ClaseID),
			URL:     ResolveURL(c.baseURL, r.URL),
			Title:   r.Titulo,
			Kind:    r.Tipo,
		})
	}
	return resources, nil
}

// GetUserProgress fetches the whole progress history of a user across all courses
func (c *Client) GetUserProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error) {
	out, err := post[progressResponse](ctx, c, ActionGetProgress, map[string]any{"usuario_id": userID})
	if err != nil {
		return nil, err
	}

	records := make([]models.ProgressRecord, 0, len(out.Progreso))
	for _, p := range out.Progreso {
		rec := models.ProgressRecord{
			UserID:         userID,
			ClassID:        int(p.ClaseID),
			CourseID:       int(p.CursoID),
			Completed:      bool(p.Completada),
			WatchedSeconds: int(p.TiempoVistoSegundos),
		}
		if p.UltimaVezVisto != "" {
			if ts, err := time.ParseInLocation(lastViewedLayout, p.UltimaVezVisto, time.Local); err == nil {
				rec.LastViewedAt = ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// CreateProgress creates the progress record of a class
func (c *Client) CreateProgress(ctx context.Context, rec models.ProgressRecord) error {
	_, err := post[emptyResponse](ctx, c, ActionCreateProgress, progressPayload(rec))
	return err
}

// UpdateProgress updates the existing progress record of a class
func (c *Client) UpdateProgress(ctx context.Context, rec models.ProgressRecord) error {
	_, err := post[emptyResponse](ctx, c, ActionUpdateProgress, progressPayload(rec))
	return err
}

func progressPayload(rec models.ProgressRecord) map[string]any {
	completada := 0
	if rec.Completed {
		completada = 1
	}
	lastViewed := rec.LastViewedAt
	if lastViewed.IsZero() {
		lastViewed = time.Now()
	}
	return map[string]any{
		"usuario_id":            rec.UserID,
		"clase_id":              rec.ClassID,
		"completada":            completada,
		"tiempo_visto_segundos": rec.WatchedSeconds,
		"ultima_vez_visto":      lastViewed.Format(lastViewedLayout),
	}
}

// ResolveURL keeps absolute URLs and joins relative ones onto base
func ResolveURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(raw, "//") {
		return raw
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
}

// post sends one action to the API and decodes the response body into T
// after checking the status envelope.
func post[T any](ctx context.Context, c *Client, accion string, fields map[string]any) (*T, error) {
	ctx, span := c.tracer.Start(ctx, "academy."+accion, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("academy.accion", accion))

	start := time.Now()
	out, statusCode, err := postOnce[T](ctx, c, accion, fields)

	span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.logger.Debug("academy request",
		zap.String("accion", accion),
		zap.Int("status", statusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)

	return out, err
}

func postOnce[T any](ctx context.Context, c *Client, accion string, fields map[string]any) (*T, int, error) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["accion"] = accion

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("academy %s: failed to encode request: %w", accion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("academy %s: failed to build request: %w", accion, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Accion: accion, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Accion: accion, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &HTTPError{Accion: accion, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, &DecodeError{Accion: accion, Err: err}
	}
	if !strings.EqualFold(strings.TrimSpace(env.Status), statusSuccess) {
		return nil, resp.StatusCode, &APIError{Accion: accion, Status: env.Status, Message: env.message()}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp.StatusCode, &DecodeError{Accion: accion, Err: err}
	}
	return &out, resp.StatusCode, nil
}
