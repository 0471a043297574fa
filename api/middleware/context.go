package middleware

import (
	"context"

	"github.com/citycare/storefront/internal/storefront"
)

type contextKey string

const (
	ctxDeviceID contextKey = "device_id"
	ctxState    contextKey = "device_state"
)

func DeviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDeviceID).(string); ok {
		return v
	}
	return ""
}

// StateFromContext returns the storefront state resolved for the request's device.
func StateFromContext(ctx context.Context) *storefront.State {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxState).(*storefront.State); ok {
		return v
	}
	return nil
}

// WithDeviceID injects the device identifier into the context.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxDeviceID, deviceID)
}

// WithState injects a device's storefront state, mainly for handler tests.
func WithState(ctx context.Context, state *storefront.State) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxState, state)
}
