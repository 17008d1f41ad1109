package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/ecociel/calcagent/domain"
	"github.com/ecociel/calcagent/metrics"
	"github.com/ecociel/calcagent/uc"
)

const (
	TagSystem     = "system"
	TagCalculator = "calculator"
)

type operation struct {
	id      string
	summary string
}

var operations = []operation{
	{id: uc.OpAdd, summary: "Precisely adds two numbers together."},
	{id: uc.OpSubtract, summary: "Precisely subtracts two numbers."},
	{id: uc.OpMultiply, summary: "Precisely multiplies two numbers."},
	{id: uc.OpDivide, summary: "Precisely divides two numbers."},
}

// CalculatorService serves the arithmetic operations and the health
// probe. It holds no per-request state.
type CalculatorService struct {
	logger  *slog.Logger
	metrics metrics.CalculatorMetrics
}

func NewCalculatorService(logger *slog.Logger, m metrics.CalculatorMetrics) *CalculatorService {
	return &CalculatorService{logger: logger, metrics: m}
}

// WebService builds the route table.
func (s *CalculatorService) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/").Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/health").To(s.health).
		Operation("health_check").
		Doc("Health check endpoint").
		Metadata(restfulspec.KeyOpenAPITags, []string{TagSystem}).
		Writes(domain.Health{}).
		Returns(http.StatusOK, "OK", domain.Health{}))

	for _, op := range operations {
		ws.Route(s.route(ws, op))
	}
	return ws
}

func (s *CalculatorService) route(ws *restful.WebService, op operation) *restful.RouteBuilder {
	rb := ws.GET("/"+op.id).To(s.calculate(op.id, uc.Operations[op.id])).
		Operation(op.id).
		Doc(op.summary).
		Param(ws.QueryParameter("a", "first operand").DataType("number").DataFormat("double").Required(true)).
		Param(ws.QueryParameter("b", "second operand").DataType("number").DataFormat("double").Required(true)).
		Metadata(restfulspec.KeyOpenAPITags, []string{TagCalculator}).
		Writes(domain.Result{}).
		Returns(http.StatusOK, "OK", domain.Result{}).
		Returns(http.StatusUnprocessableEntity, "Operand is not a number", domain.Problem{})
	if op.id == uc.OpDivide {
		rb = rb.Returns(http.StatusBadRequest, "Division by zero", domain.Problem{})
	}
	return rb
}

func (s *CalculatorService) health(_ *restful.Request, resp *restful.Response) {
	if err := writeJSON(resp, http.StatusOK, domain.Health{Status: domain.StatusHealthy}); err != nil {
		s.logger.Error("write health response", "err", err)
	}
}

func (s *CalculatorService) calculate(id string, fn uc.BinaryOperation) restful.RouteFunction {
	return func(req *restful.Request, resp *restful.Response) {
		a, err := operand(req, "a")
		if err != nil {
			s.invalid(resp, id, http.StatusUnprocessableEntity, err)
			return
		}
		b, err := operand(req, "b")
		if err != nil {
			s.invalid(resp, id, http.StatusUnprocessableEntity, err)
			return
		}

		s.logger.Info("calculate", "operation", id, "a", a, "b", b)

		result, err := fn(a, b)
		if errors.Is(err, uc.ErrDivisionByZero) {
			s.logger.Error("division by zero attempted", "a", a)
			s.invalid(resp, id, http.StatusBadRequest, err)
			return
		}
		if err != nil {
			s.metrics.Operation(id, metrics.OutcomeFault)
			writeFault(s.logger, resp, err)
			return
		}

		err = writeJSON(resp, http.StatusOK, domain.Result{Result: result})
		switch {
		case errors.Is(err, errEncode):
			// non-finite results have no JSON representation
			s.metrics.Operation(id, metrics.OutcomeFault)
			writeFault(s.logger, resp, err)
		case err != nil:
			s.logger.Error("write result", "operation", id, "err", err)
		default:
			s.metrics.Operation(id, metrics.OutcomeOK)
		}
	}
}

func (s *CalculatorService) invalid(resp *restful.Response, op string, status int, err error) {
	s.metrics.Operation(op, metrics.OutcomeInvalid)
	if werr := writeJSON(resp, status, domain.Problem{Detail: err.Error()}); werr != nil {
		s.logger.Error("write problem response", "err", werr)
	}
}

func operand(req *restful.Request, name string) (float64, error) {
	raw := req.QueryParameter(name)
	if raw == "" {
		return 0, fmt.Errorf("query parameter %s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be a number", name)
	}
	return v, nil
}
