// Package router turns one parsed request into one response.
package router

import (
	"fmt"
	"log/slog"

	"github.com/yanshuy/vhost-server/internal/config"
	"github.com/yanshuy/vhost-server/internal/request"
	"github.com/yanshuy/vhost-server/internal/response"
	"github.com/yanshuy/vhost-server/internal/static"
	"github.com/yanshuy/vhost-server/internal/vhost"
)

type methodHandler func(rt *Router, r *request.Request) *response.Response

// Methods missing from this table are answered with 404.
var methods = map[string]methodHandler{
	"GET": (*Router).serveFile,
}

// Router holds only read-only state and is safe for concurrent use.
type Router struct {
	hosts  *vhost.Resolver
	loader *static.Loader
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		hosts:  vhost.NewResolver(cfg.Hosts),
		loader: static.NewLoader(cfg.SniffUnknownTypes, logger),
		logger: logger,
	}
}

// Route never fails: every per-request fault becomes a 404 or, for a panic,
// a 500.
func (rt *Router) Route(r *request.Request) (resp *response.Response) {
	defer func() {
		if v := recover(); v != nil {
			rt.logger.Error("panic while routing", slog.String("panic", fmt.Sprint(v)))
			resp = response.InternalError()
		}
	}()

	handle, ok := methods[r.Method]
	if !ok {
		rt.logger.Debug("method not supported", slog.String("method", r.Method))
		return response.NotFound()
	}
	return handle(rt, r)
}

func (rt *Router) serveFile(r *request.Request) *response.Response {
	hostHeader, _ := r.Host()
	host, err := rt.hosts.Resolve(hostHeader)
	if err != nil {
		rt.logger.Debug("host rejected", slog.String("host", hostHeader))
		return response.NotFound()
	}

	urlPath, ok := r.Path()
	if !ok {
		rt.logger.Debug("target has no path", slog.String("host", host.Name), slog.String("target", r.Target))
		return response.NotFound()
	}

	path, err := static.ResolvePath(host.Root, urlPath)
	if err != nil {
		rt.logger.Warn("path rejected",
			slog.String("host", host.Name),
			slog.String("target", r.Target),
			slog.String("error", err.Error()),
		)
		return response.NotFound()
	}

	file, err := rt.loader.Load(path)
	if err != nil {
		rt.logger.Debug("content missing", slog.String("host", host.Name), slog.String("path", path))
		return response.NotFound()
	}

	rt.logger.Debug("content loaded",
		slog.String("host", host.Name),
		slog.String("path", path),
		slog.Int("bytes", file.Length),
	)
	return response.OK(file, host.AddHeader.List())
}
