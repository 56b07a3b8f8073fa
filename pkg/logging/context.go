package logging

import (
	"context"
)

const (
	TraceIDKey     = "trace_id"
	TriggerIDKey   = "trigger_id"
	EventNameKey   = "event_name"
	ServiceNameKey = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithTriggerID(ctx context.Context, triggerID string) context.Context {
	return context.WithValue(ctx, TriggerIDKey, triggerID)
}

func WithEventName(ctx context.Context, eventName string) context.Context {
	return context.WithValue(ctx, EventNameKey, eventName)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func GetTriggerID(ctx context.Context) string {
	if triggerID, ok := ctx.Value(TriggerIDKey).(string); ok {
		return triggerID
	}
	return ""
}

func GetEventName(ctx context.Context) string {
	if eventName, ok := ctx.Value(EventNameKey).(string); ok {
		return eventName
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if triggerID := GetTriggerID(ctx); triggerID != "" {
		fields = append(fields, "trigger_id", triggerID)
	}

	if eventName := GetEventName(ctx); eventName != "" {
		fields = append(fields, "event_name", eventName)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
