// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors

	"github.com/Annany2002/sql-sketcher-backend/internal/auth"
	"github.com/Annany2002/sql-sketcher-backend/internal/core"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/sqlgen"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

// User-facing messages.
const (
	MsgTokenRequired      = "Token de acceso requerido"
	MsgTokenExpired       = "Token expirado"
	MsgTokenInvalid       = "Token inválido"
	MsgTokenAccessInvalid = "Token de acceso inválido"
	MsgInvalidInput       = "Datos de entrada inválidos"
	MsgSQLNotFound        = "SQL no encontrado"
	MsgUserNotFound       = "Usuario no encontrado"
	MsgEmailExists        = "El email ya está registrado"
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgModelUnavailable   = "Servicio de OpenAI no configurado"
	MsgModelRateLimited   = "Límite de API de OpenAI excedido, intenta más tarde"
	MsgModelAuthFailure   = "Error de autenticación con OpenAI - Verificar API Key"
	MsgModelFailure       = "Error generando SQL"
	MsgInternal           = "Error interno del servidor"
	MsgRouteNotFound      = "Ruta no encontrada"
)

// ErrorHandler translates the last error attached to the context into a JSON response.
// exposeDetails adds the underlying error text to 500 responses.
func ErrorHandler(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		err := last.Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		statusCode, body := mapError(last, exposeDetails)

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, body)
		} else {
			customLog.Warnf("[ErrorHandler] Response already written before handling error.")
		}
	}
}

func mapError(ginErr *gin.Error, exposeDetails bool) (int, gin.H) {
	err := ginErr.Err
	var (
		validationErrs validator.ValidationErrors
		modelErr       *llm.Error
	)

	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return http.StatusUnauthorized, gin.H{"error": MsgTokenRequired}
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, gin.H{"error": MsgTokenExpired}
	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrUnexpectedSigningMethod):
		return http.StatusUnauthorized, gin.H{"error": MsgTokenInvalid}
	case errors.Is(err, auth.ErrTokenClaimsInvalid):
		return http.StatusUnauthorized, gin.H{"error": MsgTokenAccessInvalid}

	case errors.As(err, &validationErrs):
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			customLog.Printf("Validation Error: Field %s failed on %s", fe.Namespace(), fe.Tag())
			details = append(details, fe.Namespace()+": "+fe.Tag())
		}
		return http.StatusBadRequest, gin.H{"error": MsgInvalidInput, "details": details}
	case ginErr.IsType(gin.ErrorTypeBind):
		return http.StatusBadRequest, gin.H{"error": MsgInvalidInput}
	case errors.Is(err, core.ErrNoTables),
		errors.Is(err, core.ErrInvalidTable),
		errors.Is(err, core.ErrSQLRequired),
		errors.Is(err, core.ErrInvalidPagination),
		errors.Is(err, sqlgen.ErrTableNameRequired):
		return http.StatusBadRequest, gin.H{"error": err.Error()}

	case errors.Is(err, storage.ErrArtifactNotFound):
		return http.StatusNotFound, gin.H{"error": MsgSQLNotFound}
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, gin.H{"error": MsgUserNotFound}
	case errors.Is(err, storage.ErrEmailExists):
		return http.StatusConflict, gin.H{"error": MsgEmailExists}
	case errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": MsgInvalidCredentials}

	case errors.Is(err, generation.ErrModelUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": MsgModelUnavailable}
	case errors.As(err, &modelErr):
		switch modelErr.Kind {
		case llm.KindRateLimited:
			return http.StatusTooManyRequests, gin.H{"error": MsgModelRateLimited}
		case llm.KindAuthFailure:
			return http.StatusInternalServerError, gin.H{"error": MsgModelAuthFailure}
		}
		if exposeDetails {
			return http.StatusInternalServerError, gin.H{"error": MsgModelFailure + ": " + modelErr.Error()}
		}
		return http.StatusInternalServerError, gin.H{"error": MsgModelFailure}
	}

	customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
	return http.StatusInternalServerError, internalErrorBody(err, exposeDetails)
}

func internalErrorBody(err error, exposeDetails bool) gin.H {
	body := gin.H{"success": false, "error": MsgInternal}
	if exposeDetails && err != nil {
		body["details"] = err.Error()
	}
	return body
}
