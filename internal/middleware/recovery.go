// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"pressroom/internal/render"
)

// Recoverer catches panics in downstream handlers, logs the stack trace,
// and answers with the generic JSON 500 instead of crashing the server.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zap.L().Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			render.JSON(w, http.StatusInternalServerError, render.ErrorBody{
				Error:   "InternalError",
				Message: "internal server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}
