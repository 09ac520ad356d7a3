package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/portrain/lightflow/task"
)

// tracerName is the instrumentation scope name for lightflow tracing.
const tracerName = "github.com/portrain/lightflow"

// Tracing returns middleware that wraps task execution in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: lightflow.task.name, lightflow.task.queue,
// lightflow.workflow, lightflow.dag. On error, the span status is set
// to codes.Error with the error message.
func Tracing() task.Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided
// tracer. This variant allows injecting a specific TracerProvider for
// testing or when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) task.Middleware {
	return func(ctx context.Context, t *task.Task, next task.Next) (task.Outcome, error) {
		ctx, span := tracer.Start(ctx, "lightflow.task.execute",
			trace.WithAttributes(
				attribute.String("lightflow.task.name", t.Name()),
				attribute.String("lightflow.task.queue", string(t.Queue())),
				attribute.String("lightflow.workflow", t.WorkflowName()),
				attribute.String("lightflow.dag", t.DagName()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		out, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return out, err
	}
}
