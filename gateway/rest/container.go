package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecociel/calcagent/domain"
)

const (
	OpenAPIPath = "/openapi.json"
	MetricsPath = "/metrics"

	UnexpectedErrorDetail = "An unexpected error occurred. Please try again later."
)

var errEncode = errors.New("encode response")

type Config struct {
	Host        string
	Port        int
	Description string
}

// NewContainer wires the calculator routes, the OpenAPI document and the
// metrics endpoint into one container.
func NewContainer(cfg Config, svc *CalculatorService, gatherer prometheus.Gatherer, logger *slog.Logger) *restful.Container {
	container := restful.NewContainer()
	container.DoNotRecover(false)
	container.RecoverHandler(func(reason interface{}, w http.ResponseWriter) {
		writeFault(logger, w, reason)
	})
	container.ServiceErrorHandler(func(serr restful.ServiceError, _ *restful.Request, resp *restful.Response) {
		if err := writeJSON(resp, serr.Code, domain.Problem{Detail: http.StatusText(serr.Code)}); err != nil {
			logger.Error("write service error", "code", serr.Code, "err", err)
		}
	})
	container.Filter(accessLog(logger))

	container.Add(svc.WebService())
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: describe(cfg),
	}))
	container.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return container
}

func describe(cfg Config) restfulspec.PostBuildSwaggerObjectFunc {
	return func(swo *spec.Swagger) {
		swo.Info = &spec.Info{
			InfoProps: spec.InfoProps{
				Title:       "Calculator API",
				Description: cfg.Description,
				Version:     "1.0.0",
			},
		}
		swo.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		swo.Schemes = []string{"http"}
		swo.Tags = []spec.Tag{
			{TagProps: spec.TagProps{Name: TagCalculator, Description: "Arithmetic operations"}},
			{TagProps: spec.TagProps{Name: TagSystem, Description: "Service status"}},
		}
	}
}

func accessLog(logger *slog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)
		logger.Debug("request",
			"method", req.Request.Method,
			"path", req.Request.URL.Path,
			"status", resp.StatusCode(),
			"duration", time.Since(start))
	}
}

// writeJSON encodes v before touching the response, so an encoding
// failure still leaves room for a fault response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", errEncode, err)
	}
	w.Header().Set("Content-Type", restful.MIME_JSON)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// writeFault logs reason and answers with a fixed message that does not
// reveal it.
func writeFault(logger *slog.Logger, w http.ResponseWriter, reason any) {
	logger.Error("unhandled exception", "reason", fmt.Sprint(reason))
	if err := writeJSON(w, http.StatusInternalServerError, domain.Problem{Detail: UnexpectedErrorDetail}); err != nil {
		logger.Error("write fault response", "err", err)
	}
}
