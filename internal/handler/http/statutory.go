package http

import (
	"net/http"

	"github.com/cmlabs-hris/payslip-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payslip-engine/internal/pkg/statutory"
)

type StatutoryHandler interface {
	GetRules(w http.ResponseWriter, r *http.Request)
}

type statutoryHandlerImpl struct {
	rules statutory.Rules
}

// NewStatutoryHandler serves the rule table the calculator was built with.
func NewStatutoryHandler(rules statutory.Rules) StatutoryHandler {
	return &statutoryHandlerImpl{rules: rules}
}

func (h *statutoryHandlerImpl) GetRules(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.rules)
}
