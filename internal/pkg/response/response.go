// Package response renders the JSON envelope every endpoint answers with:
// {"status":"success","message","data","metadata"} or
// {"status":"error","error":{"message","statusCode","details","traceId"}}.
package response

import (
	"github.com/gofiber/fiber/v2"
)

type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
	// TraceID echoes the X-Trace-Id response header so clients can quote it.
	TraceID string `json:"traceId,omitempty"`
}

const traceIDHeader = "X-Trace-Id"

func orEmpty(v interface{}) interface{} {
	if v == nil {
		return fiber.Map{}
	}
	return v
}

func reply(c *fiber.Ctx, code int, message string, data, metadata interface{}) error {
	return c.Status(code).JSON(SuccessBody{
		Status:   "success",
		Message:  message,
		Data:     data,
		Metadata: orEmpty(metadata),
	})
}

func Success(c *fiber.Ctx, message string, data, metadata interface{}) error {
	return reply(c, fiber.StatusOK, message, data, metadata)
}

func SuccessCreated(c *fiber.Ctx, message string, data, metadata interface{}) error {
	return reply(c, fiber.StatusCreated, message, data, metadata)
}

// Error writes the error envelope with statusCode.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Status: "error",
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    orEmpty(details),
			TraceID:    c.GetRespHeader(traceIDHeader),
		},
	})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

// BadRequest is the common reply for unparsable bodies and path params.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusBadRequest, nil)
}
