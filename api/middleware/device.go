package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/storefront"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

// DeviceIDHeader carries the client's stable device identifier.
const DeviceIDHeader = "X-Device-Id"

// StateResolver returns the storefront state for a device, creating it on
// first use.
type StateResolver interface {
	Get(ctx context.Context, deviceID string) (*storefront.State, error)
}

// Device resolves the calling device. A request without the header is a new
// device: a fresh id is issued and echoed so the client can keep it.
func Device(resolver StateResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := strings.TrimSpace(r.Header.Get(DeviceIDHeader))
			if deviceID == "" {
				deviceID = uuid.NewString()
			} else if !validators.IsDeviceID(deviceID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid device id").
					WithDetails(map[string]string{"header": DeviceIDHeader}))
				return
			}
			w.Header().Set(DeviceIDHeader, deviceID)

			ctx := WithDeviceID(r.Context(), deviceID)
			if logg != nil {
				ctx = logg.WithDeviceID(ctx, deviceID)
			}

			state, err := resolver.Get(ctx, deviceID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve device"))
				return
			}

			ctx = context.WithValue(ctx, ctxState, state)
			if logg != nil {
				if userID := state.Session.UserID(); userID != 0 {
					ctx = logg.WithUserID(ctx, formatID(userID))
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
