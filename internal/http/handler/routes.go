package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"courtview/internal/service"
	"courtview/internal/storage"
)

// StaticPrefix is the URL prefix of the asset route.
const StaticPrefix = "/static"

// PageRenderer produces the application shell served at "/".
type PageRenderer interface {
	Render(ctx context.Context) ([]byte, error)
}

// Options tune response headers of the asset route.
type Options struct {
	// StaticMaxAge is the Cache-Control max-age in seconds; 0 means clients revalidate.
	StaticMaxAge int
}

// RegisterRoutes attaches the page, asset and probe routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, pages PageRenderer, assets service.AssetService, opts Options) {
	app.Get("/", Home(pages))
	app.Get(StaticPrefix+"/*", StaticAsset(assets, opts))

	app.Get("/health", HealthCheck(assets))
	app.Get("/healthz", LivenessProbe())
}

// Home renders the page the client-side court scene mounts into.
func Home(pages PageRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := pages.Render(c.UserContext())
		if err != nil {
			trace.SpanFromContext(c.UserContext()).RecordError(err)
			return internalError(c)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(fiber.StatusOK).Send(body)
	}
}

// StaticAsset streams a file from the asset root.
// Missing files and paths leaving the root are 404; unreadable files are 500.
func StaticAsset(assets service.AssetService, opts Options) fiber.Handler {
	cacheControl := "no-cache"
	if opts.StaticMaxAge > 0 {
		cacheControl = "public, max-age=" + strconv.Itoa(opts.StaticMaxAge)
	}

	return func(c *fiber.Ctx) error {
		asset, err := assets.Open(c.UserContext(), c.Params("*"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return notFound(c)
			}
			trace.SpanFromContext(c.UserContext()).RecordError(err)
			return internalError(c)
		}

		info := asset.Info
		c.Set(fiber.HeaderContentType, info.ContentType)
		c.Set(fiber.HeaderCacheControl, cacheControl)
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, info.ETag)
		}
		if !info.LastModified.IsZero() {
			c.Set(fiber.HeaderLastModified, info.LastModified.UTC().Format(http.TimeFormat))
		}

		if notModified(c, info) {
			asset.Body.Close()
			c.Status(fiber.StatusNotModified)
			return nil
		}

		// fasthttp closes the stream once the response is written.
		return c.Status(fiber.StatusOK).SendStream(asset.Body, int(info.Size))
	}
}

// HealthCheck reports whether the asset root is reachable.
func HealthCheck(assets service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := assets.Ready(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// notModified evaluates If-None-Match, falling back to If-Modified-Since only
// when no entity tag was sent.
func notModified(c *fiber.Ctx, info storage.ObjectInfo) bool {
	if inm := c.Get(fiber.HeaderIfNoneMatch); inm != "" {
		return etagMatch(inm, info.ETag)
	}
	if ims := c.Get(fiber.HeaderIfModifiedSince); ims != "" && !info.LastModified.IsZero() {
		since, err := http.ParseTime(ims)
		if err != nil {
			return false
		}
		return !info.LastModified.Truncate(time.Second).After(since)
	}
	return false
}

// etagMatch uses weak comparison.
func etagMatch(header, etag string) bool {
	if etag == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
