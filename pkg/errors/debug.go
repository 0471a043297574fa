package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	RemoteMethod string `json:"remote_method,omitempty"`
	RemotePath   string `json:"remote_path,omitempty"`
	RemoteStatus int    `json:"remote_status,omitempty"`
}

// RemoteCall describes the upstream request that produced an error. The remote
// client attaches it as details so logs can show which endpoint failed.
type RemoteCall struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
		if call, ok := te.Details().(RemoteCall); ok {
			d.RemoteMethod = call.Method
			d.RemotePath = call.Path
			d.RemoteStatus = call.Status
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	return d
}
