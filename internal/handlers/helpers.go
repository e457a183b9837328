package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/middleware"
)

func companyID(c *gin.Context) uint {
	return c.MustGet(middleware.ContextCompanyID).(uint)
}

func userID(c *gin.Context) *uint {
	id := c.MustGet(middleware.ContextUserID).(uint)
	return &id
}

// writeError traduz erros de negócio para o status HTTP da API; erro
// sem código vira 500 genérico.
func writeError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)

	switch code {
	case "":
		httperr.Internal(c, "internal_error", "erro inesperado")
	case httperr.CodeNotFound:
		httperr.NotFound(c, code, "recurso não encontrado")
	case httperr.CodeAlreadyInRoute,
		httperr.CodeInvalidTransition,
		httperr.CodeNotAPermutation,
		httperr.CodeVersionConflict,
		httperr.CodeRouteBusy,
		httperr.CodeRouteNotEditable,
		httperr.CodeConflictingRoute:
		httperr.Conflict(c, code, "conflito com o estado atual da rota")
	case httperr.CodeProviderError:
		httperr.BadGateway(c, code, "provedor de rotas indisponível")
	default:
		if strings.HasSuffix(code, "_not_found") {
			httperr.NotFound(c, code, "recurso não encontrado")
			return
		}
		httperr.BadRequest(c, code, "requisição inválida")
	}
}

// fromVersionQuery lê o check otimista de versão da query string, para
// endpoints sem corpo JSON.
func fromVersionQuery(c *gin.Context) *uint {
	raw := c.Query("from_version")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	out := uint(v)
	return &out
}

func ok(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// formatFullAddress monta o texto enviado ao geocodificador.
func formatFullAddress(logradouro, numero, bairro, cidade, estado string) string {
	parts := make([]string, 0, 4)
	if logradouro != "" {
		if numero != "" {
			parts = append(parts, logradouro+", "+numero)
		} else {
			parts = append(parts, logradouro)
		}
	}
	if bairro != "" {
		parts = append(parts, bairro)
	}
	if cidade != "" {
		if estado != "" {
			parts = append(parts, cidade+" - "+estado)
		} else {
			parts = append(parts, cidade)
		}
	}
	return strings.Join(parts, ", ")
}
