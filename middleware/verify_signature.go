// Package middleware holds gin middlewares for the webhook server.
package middleware

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Header names Discord uses for webhook authenticity.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

const rawBodyKey = "rawBody"

// VerifySignature authenticates an inbound webhook request before any
// business logic runs. The signature covers the exact byte sequence
// timestamp++body, so the body is buffered completely first. Missing
// headers abort with 400, a failed check with 403; in both cases the
// body is never parsed.
func VerifySignature(publicKey ed25519.PublicKey) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		signature := ctx.GetHeader(HeaderSignature)
		timestamp := ctx.GetHeader(HeaderTimestamp)
		if signature == "" || timestamp == "" {
			ctx.AbortWithStatus(http.StatusBadRequest)
			return
		}

		sig, err := hex.DecodeString(signature)
		if err != nil || len(sig) != ed25519.SignatureSize {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		signed := make([]byte, 0, len(timestamp)+len(body))
		signed = append(signed, timestamp...)
		signed = append(signed, body...)
		if !ed25519.Verify(publicKey, signed, sig) {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		// Hand the verified bytes downstream; the body reader is spent.
		ctx.Set(rawBodyKey, body)
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
		ctx.Next()
	}
}

// RawBody returns the verified request body stored by VerifySignature.
func RawBody(ctx *gin.Context) ([]byte, bool) {
	v, ok := ctx.Get(rawBodyKey)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}
