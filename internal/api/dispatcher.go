package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memestream/memestream/pkg/logging"
	"github.com/memestream/memestream/pkg/telemetry"
)

// Envelope is the shared response shape of every operation.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// Result is what an operation handler returns on success.
type Result struct {
	Message string
	Data    interface{}
}

// OperationHandler handles one named operation. It receives the full
// request body and is responsible for binding its own typed request.
type OperationHandler func(c *gin.Context, body json.RawMessage) (*Result, error)

// Dispatcher routes JSON operation requests to typed handlers. Each
// operation owns its request struct and validates at the boundary, so
// unknown operations and stray fields stop here instead of leaking
// into storage calls.
type Dispatcher struct {
	operations map[string]OperationHandler
	logger     *zap.Logger
}

// NewDispatcher creates a new operation dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		operations: make(map[string]OperationHandler),
		logger:     logging.GetLogger().With(zap.String("component", "dispatcher")),
	}
}

// Register registers a handler for an operation name
func (d *Dispatcher) Register(operation string, handler OperationHandler) {
	d.operations[operation] = handler
}

type operationProbe struct {
	Operation string `json:"operation"`
}

// Handle handles one operation request
func (d *Dispatcher) Handle(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "api.dispatch")
	defer span.End()
	// Handlers read c.Request.Context(), so their spans nest under
	// this one.
	c.Request = c.Request.WithContext(ctx)

	body, err := c.GetRawData()
	if err != nil {
		d.sendError(c, BadRequest("unreadable request body"))
		return
	}

	var probe operationProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		d.sendError(c, BadRequest("request body is not valid JSON"))
		return
	}
	if probe.Operation == "" {
		d.sendError(c, BadRequest("operation is required"))
		return
	}

	handler, ok := d.operations[probe.Operation]
	if !ok {
		d.sendError(c, BadRequest("unsupported operation: "+probe.Operation))
		return
	}

	result, err := handler(c, body)
	if err != nil {
		if apiErr, ok := err.(*Error); ok {
			d.sendError(c, apiErr)
			return
		}
		d.logger.Error("operation failed",
			zap.String("operation", probe.Operation),
			zap.Error(err))
		d.sendError(c, Internal(err.Error()))
		return
	}

	resp := Envelope{StatusCode: http.StatusOK}
	if result != nil {
		resp.Message = result.Message
		resp.Data = result.Data
	}
	c.JSON(http.StatusOK, resp)
}

// sendError writes an error envelope. The HTTP status mirrors the
// envelope's statusCode.
func (d *Dispatcher) sendError(c *gin.Context, apiErr *Error) {
	c.JSON(apiErr.Code, Envelope{
		StatusCode: apiErr.Code,
		Data:       gin.H{"error": apiErr.Message},
	})
}
